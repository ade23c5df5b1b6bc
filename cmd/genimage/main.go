// Command genimage calls the image provider directly through the official SDK
// and saves the result to disk. The credential must be available to this
// process, unlike the relay where it stays server-side.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	appclient "imagerelay/internal/client"
	"imagerelay/internal/infra"
	"imagerelay/internal/providers/image"
	"imagerelay/internal/storage"
)

func main() {
	_ = godotenv.Load()

	defaultModel := os.Getenv("GEMINI_MODEL")
	if defaultModel == "" {
		defaultModel = "imagen-3.0-generate-002"
	}

	prompt := flag.String("prompt", "", "text prompt describing the image")
	aspect := flag.String("aspect", "square", "aspect ratio: wide, tall or square")
	outDir := flag.String("out", "artifacts", "directory for downloaded images")
	model := flag.String("model", defaultModel, "provider model identifier")
	flag.Parse()

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Fatal().Msg("GEMINI_API_KEY is required")
	}

	ctx := context.Background()
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create genai client")
	}

	store, err := storage.NewFileStore(*outDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open artifact store")
	}

	relay := appclient.NewGeneratorRelay(image.NewGenAIGenerator(sdk, *model))
	controller := appclient.NewController(relay, store)

	controller.UpdatePrompt(*prompt)
	if err := controller.SelectAspectRatio(*aspect); err != nil {
		logger.Fatal().Err(err).Msg("invalid aspect ratio")
	}
	if err := controller.Submit(ctx); err != nil {
		logger.Fatal().Err(err).Msg("generation failed")
	}

	path, err := controller.Download(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to save image")
	}
	fmt.Println(path)
}
