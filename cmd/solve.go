package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/mathmentor/mentor/internal/casebank"
	"github.com/mathmentor/mentor/internal/config"
	"github.com/mathmentor/mentor/internal/intake"
	"github.com/mathmentor/mentor/internal/pipeline"
)

var (
	solveImage string
	solveAudio string
	solveYes   bool
)

var solveCmd = &cobra.Command{
	Use:   "solve [problem]",
	Short: "Solve a math problem and record the outcome",
	Long: `Runs a problem through the full pipeline: parse, retrieve references
and similar past cases, solve, verify, explain. Afterwards you judge
the solution; judged interactions are saved to case memory.

The problem can be given as text, or extracted from a photo (--image)
or a voice recording (--audio).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveImage, "image", "", "extract the problem from an image file")
	solveCmd.Flags().StringVar(&solveAudio, "audio", "", "transcribe the problem from an audio file")
	solveCmd.Flags().BoolVarP(&solveYes, "yes", "y", false, "skip confirmation of extracted text")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input, inputType, err := resolveInput(ctx, cfg, args)
	if err != nil {
		return err
	}

	bank, err := openBank(cfg)
	if err != nil {
		return err
	}
	meter := openMeter(cfg)
	ix, err := loadIndex(ctx, cfg)
	if err != nil {
		return err
	}

	var notify func(pipeline.Event)
	if verbose {
		notify = func(e pipeline.Event) {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", e.State, e.Detail)
		}
	}

	orch, err := buildOrchestrator(cfg, ix, bank, meter, notify)
	if err != nil {
		return err
	}

	trace, err := orch.Run(ctx, input, inputType)
	if err != nil {
		return fmt.Errorf("solving failed: %w", err)
	}

	printTrace(trace)

	return promptFeedback(orch, trace)
}

// resolveInput turns the command arguments into problem text, running
// image or audio intake when requested.
func resolveInput(ctx context.Context, cfg *config.Config, args []string) (string, casebank.InputType, error) {
	if solveImage != "" && solveAudio != "" {
		return "", "", fmt.Errorf("--image and --audio are mutually exclusive")
	}

	switch {
	case solveImage != "":
		client, err := intakeClient()
		if err != nil {
			return "", "", err
		}
		// The OCR path always goes through OpenAI; only reuse the
		// configured model when it is an OpenAI one.
		visionModel := ""
		if cfg.Provider == config.ProviderOpenAI {
			visionModel = cfg.Model
		}
		res, err := intake.NewVisionOCR(client, visionModel).ReadImage(ctx, solveImage)
		if err != nil {
			return "", "", fmt.Errorf("reading image: %w", err)
		}
		if res.NeedsReview && !solveYes {
			if err := confirmExtracted(res.Text, res.Confidence); err != nil {
				return "", "", err
			}
		}
		return res.Text, casebank.InputImage, nil

	case solveAudio != "":
		client, err := intakeClient()
		if err != nil {
			return "", "", err
		}
		res, err := intake.NewSpeechReader(client, "").ReadAudio(ctx, solveAudio)
		if err != nil {
			return "", "", fmt.Errorf("transcribing audio: %w", err)
		}
		fmt.Printf("Transcribed: %s\n", res.Text)
		return res.Text, casebank.InputAudio, nil

	default:
		if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			return "", "", fmt.Errorf("provide a problem as an argument, or use --image or --audio")
		}
		return args[0], casebank.InputText, nil
	}
}

func intakeClient() (*openai.Client, error) {
	apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for image and audio input")
	}
	return openai.NewClient(apiKey), nil
}

func confirmExtracted(text string, confidence float64) error {
	fmt.Printf("Extracted (confidence %.2f): %s\n", confidence, text)
	prompt := promptui.Prompt{
		Label:     "Solve this problem",
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("aborted")
	}
	return nil
}

func printTrace(t *pipeline.Trace) {
	fmt.Printf("\nProblem: %s\n", t.Parsed.ProblemText)
	fmt.Printf("Topic:   %s\n", t.Parsed.Topic)
	if t.Parsed.NeedsClarification {
		fmt.Printf("Note:    %s\n", t.Parsed.ClarificationReason)
	}

	if len(t.SimilarCases) > 0 {
		fmt.Printf("\nSimilar past cases:\n")
		for _, m := range t.SimilarCases {
			fmt.Printf("  [%.2f] %s (%s)\n", m.Score, m.Record.ParsedProblem.ProblemText, m.Record.Feedback)
		}
	}

	fmt.Printf("\nSolution:\n%s\n", t.Solution.Text)
	if t.Solution.SymbolicResult != "" {
		fmt.Printf("\nResult: %s\n", t.Solution.SymbolicResult)
	}

	status := "did not pass"
	if t.Verification.IsCorrect {
		status = "passed"
	}
	fmt.Printf("\nVerification %s (confidence %.2f)\n", status, t.Verification.Confidence)
	for _, issue := range t.Verification.Issues {
		fmt.Printf("  - %s\n", issue)
	}

	fmt.Printf("\nExplanation:\n%s\n\n", t.Explanation)
}

// promptFeedback asks for the human verdict and finalizes the trace.
// Skipping leaves nothing in case memory.
func promptFeedback(orch *pipeline.Orchestrator, trace *pipeline.Trace) error {
	sel := promptui.Select{
		Label: "Was this solution correct",
		Items: []string{"correct", "incorrect", "skip"},
	}
	_, verdict, err := sel.Run()
	if err != nil || verdict == "skip" {
		orch.Discard(trace.ID)
		fmt.Println("Not recorded.")
		return nil
	}

	var comment string
	if verdict == "incorrect" {
		prompt := promptui.Prompt{Label: "What was wrong (optional)"}
		comment, _ = prompt.Run()
	}

	id, err := orch.Feedback(trace.ID, casebank.Feedback(verdict), comment)
	if err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}
	fmt.Printf("Recorded case %s.\n", id)
	return nil
}
