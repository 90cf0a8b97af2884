package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rcliao/deskmate/internal/assistant"
	"github.com/rcliao/deskmate/internal/collab"
	"github.com/rcliao/deskmate/internal/composer"
	"github.com/rcliao/deskmate/internal/config"
	"github.com/rcliao/deskmate/internal/intent"
	"github.com/rcliao/deskmate/internal/llm"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive assistant",
		Long:  "Start the assistant loop. Reads typed input by default, or transcripts from audio.stt_command with --voice.",
		Args:  cobra.NoArgs,
		Run:   runChat,
	}

	cmd.Flags().Bool("voice", false, "Use the speech-to-text voice loop")
	cmd.Flags().Bool("mute", false, "Disable spoken output")
	cmd.Flags().Bool("yes", false, "Skip confirmation of desktop actions")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	voice, _ := cmd.Flags().GetBool("voice")
	mute, _ := cmd.Flags().GetBool("mute")
	yes, _ := cmd.Flags().GetBool("yes")

	e := setup()
	defer e.Close()
	cfg := e.cfg
	voice = voice || cfg.App.UseVoiceLoop

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, validator, err := buildRouter(cfg)
	if err != nil {
		exitErr("load intent catalog", err)
	}

	gen, err := llm.New(llm.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Host:        cfg.LLM.Host,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		MaxRetries:  cfg.LLM.MaxRetries,
		Timeout:     cfg.LLM.Timeout,
		Logger:      e.log,
	})
	if err != nil {
		exitErr("create llm", err)
	}

	set, lines, cleanup, err := buildCollab(ctx, cfg, e.log, voice, mute)
	if err != nil {
		exitErr("init collaborators", err)
	}
	defer cleanup()
	if yes {
		set.Confirmer = collab.AutoConfirmer(true)
	}

	a, err := assistant.New(assistant.Options{
		Router:    router,
		Validator: validator,
		Memory:    e.mem,
		Composer: composer.New(e.mem, router, composer.Options{
			Results:       cfg.Memory.ContextResults,
			PreviewLength: cfg.Memory.PreviewLength,
		}, e.log),
		Generator:              gen,
		Collab:                 set,
		SystemPrompt:           cfg.LLM.SystemPrompt,
		HistoryTurns:           cfg.LLM.HistoryTurns,
		ConfirmActions:         cfg.ConfirmActions() && !yes,
		RequireConfirmationFor: cfg.App.RequireConfirmationFor,
		ScreenMaxChars:         cfg.Screen.MaxChars,
		VoiceProfile:           cfg.Speech.Profile,
		TurnTimeout:            cfg.App.TurnTimeout,
		Out:                    cmd.OutOrStdout(),
		Logger:                 e.log,
	})
	if err != nil {
		exitErr("create assistant", err)
	}

	prompt := "You> "
	if voice {
		prompt = ""
		if set.Speaker != nil {
			set.Speaker.Speak(assistant.VoiceGreeting, cfg.Speech.Profile)
		}
		fmt.Fprintln(cmd.OutOrStdout(), assistant.VoiceGreeting)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), assistant.Banner)
	}

	if err := a.Run(ctx, lines, prompt); err != nil && ctx.Err() == nil {
		exitErr("chat", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nGoodbye.")
}

func buildRouter(cfg *config.Config) (*intent.Router, *intent.Validator, error) {
	catalog := intent.DefaultCatalog()
	if cfg.Intent.CatalogFile != "" {
		spec, err := intent.LoadSpec(cfg.Intent.CatalogFile)
		if err != nil {
			return nil, nil, err
		}
		if catalog, err = intent.Compile(spec); err != nil {
			return nil, nil, err
		}
	}
	limits := intent.Limits{
		MaxX:          cfg.Intent.MaxX,
		MaxY:          cfg.Intent.MaxY,
		MaxTextLength: cfg.Intent.MaxTextLength,
	}
	return intent.NewRouter(catalog), intent.NewValidator(catalog, limits), nil
}

// buildCollab wires whatever collaborators the host supports. Missing tools
// are logged and left nil. The returned channel feeds both the turn loop and
// the confirmer.
func buildCollab(ctx context.Context, cfg *config.Config, log zerolog.Logger, voice, mute bool) (collab.Set, <-chan string, func(), error) {
	var set collab.Set
	var closers []func()

	if act, err := collab.NewXdotoolActuator(cfg.Controls.XdotoolPath, cfg.Controls.TypeDelay, log); err != nil {
		log.Warn().Err(err).Msg("desktop control disabled")
	} else {
		set.Actuator = act
	}

	if cfg.Screen.OCRCommand != "" {
		set.Screen = collab.NewCommandScreenReader(cfg.Screen.OCRCommand)
	}

	if cfg.Webcam.Enabled {
		poller := collab.NewScenePoller(cfg.Webcam.DescribeCommand, cfg.Webcam.Interval, log)
		poller.Start(ctx)
		closers = append(closers, poller.Stop)
		set.Scene = poller
	}

	if cfg.SpeechEnabled() && !mute {
		var v collab.Voice
		switch {
		case cfg.Speech.Command != "":
			v = collab.NewCommandVoice(cfg.Speech.Command)
		case cfg.Speech.Notify:
			v = collab.NotifyVoice{Title: "Deskmate"}
		default:
			v = collab.ConsoleVoice{W: os.Stdout}
		}
		speaker := collab.NewQueuedSpeaker(v, log)
		closers = append(closers, func() { _ = speaker.Close() })
		set.Speaker = speaker
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if voice {
		if cfg.Audio.STTCommand == "" {
			cleanup()
			return set, nil, func() {}, fmt.Errorf("voice mode needs audio.stt_command")
		}
		set.Listener = collab.NewCommandListener(cfg.Audio.STTCommand, log)
	} else {
		set.Listener = collab.NewLineListener(os.Stdin)
	}
	lines := set.Listener.Listen(ctx)
	set.Confirmer = collab.NewChannelConfirmer(lines, os.Stdout)
	return set, lines, cleanup, nil
}
