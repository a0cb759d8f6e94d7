package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/monitor-agent/pkg/config"
	"github.com/johnquangdev/monitor-agent/pkg/executor"
)

var chromeCandidates = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}

// NewDoctorCmd checks external tools and credentials
func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:         "doctor",
		Short:       "Check prerequisites",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if cfg == nil {
				var err error
				if cfg, err = config.Read(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if runDoctor(out, cfg, executor.New()) {
				fmt.Fprintln(out, "\n✅ All prerequisites met. Ready to monitor!")
			} else {
				fmt.Fprintln(out, "\n⚠️  Some prerequisites are missing.")
			}
			return nil
		},
	}
}

func check(out io.Writer, name string, ok bool, detail string) {
	mark := "✅"
	if !ok {
		mark = "❌"
	}
	fmt.Fprintf(out, "%s %-20s %s\n", mark, name, detail)
}

// runDoctor prints one line per prerequisite and reports whether all passed
func runDoctor(out io.Writer, cfg *config.Config, exec executor.Executor) bool {
	ok := true
	tool := func(name, binary, hint string) {
		if path, err := exec.LookPath(binary); err != nil {
			check(out, name, false, "not found. "+hint)
			ok = false
		} else {
			check(out, name, true, path)
		}
	}

	tool("ffmpeg", cfg.Stream.FFmpegPath, "Install ffmpeg or set FFMPEG_PATH")

	if cfg.Stream.ChromePath != "" {
		tool("chrome", cfg.Stream.ChromePath, "Check CHROME_PATH")
	} else {
		found := ""
		for _, candidate := range chromeCandidates {
			if path, err := exec.LookPath(candidate); err == nil {
				found = path
				break
			}
		}
		if found == "" {
			check(out, "chrome", false, "not found. Install Chrome/Chromium or set CHROME_PATH")
			ok = false
		} else {
			check(out, "chrome", true, found)
		}
	}

	// yt-dlp is only a fallback
	if cfg.Stream.YTDLPPath != "" {
		if path, err := exec.LookPath(cfg.Stream.YTDLPPath); err != nil {
			check(out, "yt-dlp", true, "not found, fallback resolver disabled")
		} else {
			check(out, "yt-dlp", true, path)
		}
	}

	switch cfg.Stream.STTProvider {
	case "assemblyai":
		check(out, "AssemblyAI API key", cfg.Assembly.APIKey != "", keyDetail(cfg.Assembly.APIKey, "ASSEMBLYAI_API_KEY"))
		ok = ok && cfg.Assembly.APIKey != ""
	case "whisper":
		tool("whisper", cfg.Whisper.BinaryPath, "Build whisper.cpp or set WHISPER_BINARY")
		if _, err := os.Stat(cfg.Whisper.ModelPath); err != nil {
			check(out, "whisper model", false, "missing: "+cfg.Whisper.ModelPath)
			ok = false
		} else {
			check(out, "whisper model", true, cfg.Whisper.ModelPath)
		}
	default:
		check(out, "STT provider", false, fmt.Sprintf("unsupported STT_PROVIDER %q", cfg.Stream.STTProvider))
		ok = false
	}

	check(out, "Groq API key", cfg.Groq.APIKey != "", keyDetail(cfg.Groq.APIKey, "GROQ_API_KEY"))
	ok = ok && cfg.Groq.APIKey != ""

	if err := cfg.Pipeline.Validate(); err != nil {
		check(out, "pipeline settings", false, err.Error())
		ok = false
	} else {
		check(out, "pipeline settings", true, fmt.Sprintf("%s segments, TTL %s", cfg.Pipeline.SegmentDuration, cfg.Pipeline.LocatorTTL))
	}

	if err := os.MkdirAll(cfg.Pipeline.WorkDir, 0o755); err != nil {
		check(out, "segment directory", false, err.Error())
		ok = false
	} else {
		abs, _ := filepath.Abs(cfg.Pipeline.WorkDir)
		check(out, "segment directory", true, abs)
	}

	return ok
}

func keyDetail(key, env string) string {
	if key != "" {
		return "configured"
	}
	return "not set. Set " + env
}
