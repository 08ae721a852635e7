package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/speechlab/fluency-pipeline/config"
	"github.com/speechlab/fluency-pipeline/orchestrator"
)

var log = logrus.New()

func main() {
	// optional .env with service URLs and paths; ignore when absent
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "fluency",
		Short: "Prosodic fluency scoring of non-native English speech",
	}
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runCmd() *cobra.Command {
	var (
		audioDir string
		dictPath string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a session directory of wav files and score each speaker",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := cfg.Load()
			if err != nil {
				return err
			}
			if audioDir != "" {
				conf.Paths.Audio = audioDir
			}
			if dictPath != "" {
				conf.Paths.Dictionary = dictPath
			}
			if outDir != "" {
				conf.Paths.Outputs = outDir
			}

			if lvl, err := logrus.ParseLevel(conf.Pipeline.LogLvl); err == nil {
				log.SetLevel(lvl)
			}
			if conf.Paths.Audio == "" {
				log.Fatal("no audio directory; set paths.audio or --audio")
			}

			p, err := orchestrator.NewPipeline(conf, log)
			if err != nil {
				return err
			}
			return p.Run(context.Background(), conf.Paths.Audio)
		},
	}
	cmd.Flags().StringVar(&audioDir, "audio", "", "directory of session wav files")
	cmd.Flags().StringVar(&dictPath, "dict", "", "path to the CMU pronunciation dictionary")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory root")
	return cmd
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
