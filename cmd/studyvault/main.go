// Command studyvault is the pipeline CLI: upload documents and transcripts,
// search a user's library, and delete indexed documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/studyvault"
	"github.com/kailas-cloud/studyvault/internal/config"
	"github.com/kailas-cloud/studyvault/internal/logger"
	"github.com/kailas-cloud/studyvault/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:           "studyvault",
	Short:         "Document and transcript vector search pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(uploadCmd, searchCmd, deleteCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newClient loads configuration for the current environment and builds the
// pipeline client plus its logger. The caller owns both.
func newClient() (*studyvault.Client, *zap.Logger, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}

	metrics.Register()

	client, err := studyvault.New(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return client, log, nil
}
