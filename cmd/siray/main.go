// Command siray is a small CLI over the SDK: submit generation tasks,
// check their status, run them to completion, and upload files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	siray "github.com/siray-ai/siray-go"
	"github.com/siray-ai/siray-go/internal/preprocess"
)

func main() {
	// A missing .env is fine; SIRAY_API_KEY may come from the shell.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("🚨 Failed to load config: %v", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		log.Fatalf("🚨 %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "generate":
		err = cmdGenerate(ctx, client, cfg, os.Args[2:])
	case "status":
		err = cmdStatus(ctx, client, os.Args[2:])
	case "run":
		err = cmdRun(ctx, client, cfg, os.Args[2:])
	case "upload":
		err = cmdUpload(ctx, client, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("🚨 %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: siray <generate|status|run|upload> [flags]")
}

func newClient(cfg *Config) (*siray.Client, error) {
	opts := []siray.Option{}
	if cfg.BaseURL != "" {
		opts = append(opts, siray.WithBaseURL(cfg.BaseURL))
	}
	if cfg.GatewayURL != "" {
		opts = append(opts, siray.WithGatewayURL(cfg.GatewayURL))
	}
	if d := cfg.timeout(); d > 0 {
		opts = append(opts, siray.WithTimeout(d))
	}
	return siray.New(opts...)
}

// namespace picks the image or video service by kind flag.
func namespace(client *siray.Client, kind string) (*siray.GenerationService, error) {
	switch kind {
	case "image":
		return client.Image, nil
	case "video":
		return client.Video, nil
	default:
		return nil, fmt.Errorf("unknown kind %q (want image or video)", kind)
	}
}

func defaultModel(cfg *Config, kind string) string {
	if kind == "video" {
		return cfg.VideoModel
	}
	return cfg.ImageModel
}

func cmdGenerate(ctx context.Context, client *siray.Client, cfg *Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	kind := fs.String("kind", "image", "image or video")
	model := fs.String("model", "", "model identifier")
	prompt := fs.String("prompt", "", "generation prompt")
	image := fs.String("image", "", "optional input image URL")
	fs.Parse(args)

	svc, err := namespace(client, *kind)
	if err != nil {
		return err
	}
	if *model == "" {
		*model = defaultModel(cfg, *kind)
	}

	resp, err := svc.GenerateAsync(ctx, &siray.GenerationRequest{
		Model:  *model,
		Prompt: *prompt,
		Image:  *image,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.TaskID)
	return nil
}

func cmdStatus(ctx context.Context, client *siray.Client, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	kind := fs.String("kind", "image", "image or video")
	task := fs.String("task", "", "task ID")
	fs.Parse(args)

	svc, err := namespace(client, *kind)
	if err != nil {
		return err
	}

	status, err := svc.QueryTask(ctx, *task)
	if err != nil {
		return err
	}

	printStatus(status)
	return nil
}

func cmdRun(ctx context.Context, client *siray.Client, cfg *Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	kind := fs.String("kind", "image", "image or video")
	model := fs.String("model", "", "model identifier")
	prompt := fs.String("prompt", "", "generation prompt")
	image := fs.String("image", "", "optional input image URL")
	interval := fs.Duration("interval", 2*time.Second, "poll interval")
	timeout := fs.Duration("timeout", 0, "polling budget (0 = no limit)")
	fs.Parse(args)

	svc, err := namespace(client, *kind)
	if err != nil {
		return err
	}
	if *model == "" {
		*model = defaultModel(cfg, *kind)
	}

	log.Printf("Submitting %s task 🚀", *kind)
	status, err := svc.Run(ctx, &siray.GenerationRequest{
		Model:  *model,
		Prompt: *prompt,
		Image:  *image,
	}, &siray.RunOptions{PollInterval: *interval, Timeout: *timeout})
	if err != nil {
		return err
	}

	printStatus(status)
	if status.IsFailed() {
		os.Exit(1)
	}
	return nil
}

func cmdUpload(ctx context.Context, client *siray.Client, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "path of the file to upload")
	maxWidth := fs.Int("max-width", 0, "downscale images wider than this before upload (0 = off)")
	quality := fs.Int("quality", 90, "re-encode quality when downscaling")
	format := fs.String("format", "jpeg", "re-encode format when downscaling (jpeg, png, webp)")
	fs.Parse(args)

	path := *file
	if *maxWidth > 0 {
		shrunk, err := downscaleToTemp(path, *maxWidth, *quality, *format)
		if err != nil {
			return err
		}
		defer os.RemoveAll(filepath.Dir(shrunk))
		path = shrunk
	}

	url, err := client.Files.Upload(ctx, path)
	if err != nil {
		return err
	}

	fmt.Println(url)
	return nil
}

// downscaleToTemp writes the shrunken image next to the temp dir, keeping
// the original filename so the uploaded object key stays recognizable.
func downscaleToTemp(path string, maxWidth, quality int, format string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	shrunk, err := preprocess.Downscale(data, maxWidth, quality, format)
	if err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "siray-upload-*")
	if err != nil {
		return "", err
	}

	name := filepath.Base(path)
	if ext := "." + strings.TrimPrefix(format, "."); ext != filepath.Ext(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
	}

	out := filepath.Join(dir, name)
	if err := os.WriteFile(out, shrunk, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func printStatus(status *siray.TaskStatus) {
	fmt.Printf("task: %s\nstatus: %s\n", status.TaskID, status.Status)
	if status.Progress != "" {
		fmt.Printf("progress: %d%%\n", status.ProgressPercent())
	}
	switch {
	case status.IsCompleted():
		for _, url := range status.Outputs {
			fmt.Println(url)
		}
	case status.IsFailed():
		fmt.Printf("fail reason: %s\n", status.FailReason)
	}
}
