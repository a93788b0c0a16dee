package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridoystarlord/modelforge/generator"
	"github.com/ridoystarlord/modelforge/relations"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/ridoystarlord/modelforge/validator"
	"github.com/spf13/cobra"
)

// schemaLoader produces a fresh snapshot for every request.
type schemaLoader func(ctx context.Context) (*schema.Schema, error)

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated models over HTTP",
		Long: `Start an HTTP server that introspects the schema on every request and returns
generated models, inferred relations and validation results.

Routes:
  GET /healthz
  GET /api/models?format=sqlalchemy|gostruct
  GET /api/relations
  GET /api/validate

Examples:
  modelforge serve                   # Listen on :8080
  modelforge serve --port 9000
  modelforge serve --schema-file schema.yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			router := newRouter(a.loadSchema, generator.Options{Package: a.cfg.Package}, gin.Logger())

			server := &http.Server{
				Addr:         ":" + a.cfg.Serve.Port,
				Handler:      router,
				IdleTimeout:  time.Minute,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "🚀 Serving models on http://localhost:%s\n", a.cfg.Serve.Port)
				fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop the server")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err, ok := <-errCh:
				if ok {
					return fmt.Errorf("starting server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down server: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "👋 Server stopped")
			return nil
		},
	}

	serveCmd.Flags().String("port", "8080", "Port to run the web server on")
	a.bindFlag("serve.port", serveCmd.Flags().Lookup("port"))
	return serveCmd
}

func newRouter(load schemaLoader, opts generator.Options, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	api.GET("/models", func(c *gin.Context) {
		s, ok := loadOrFail(c, load)
		if !ok {
			return
		}
		format := c.DefaultQuery("format", generator.DefaultFormat)
		if _, err := generator.For(format, opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "formats": generator.Formats()})
			return
		}
		content, _, err := generator.Generate(s, format, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.String(http.StatusOK, content)
	})

	api.GET("/relations", func(c *gin.Context) {
		s, ok := loadOrFail(c, load)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, buildRelationsReport(relations.Resolve(s)))
	})

	api.GET("/validate", func(c *gin.Context) {
		s, err := load(c.Request.Context())
		if err != nil {
			result, err := validator.FromError(err)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
				return
			}
			c.JSON(http.StatusOK, result)
			return
		}
		c.JSON(http.StatusOK, validator.ValidateSchema(s, nil))
	})

	return router
}

func loadOrFail(c *gin.Context, load schemaLoader) (*schema.Schema, bool) {
	s, err := load(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, schema.ErrMalformedSchema) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return nil, false
	}
	return s, true
}
