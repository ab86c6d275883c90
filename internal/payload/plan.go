package payload

import (
	"fmt"
	"time"
	"unicode/utf8"

	"keysim/internal/config"
)

// Task is one ordered unit of typing
type Task struct {
	Description string `json:"description"`
	Payload     string `json:"payload"`
}

// Plan is the ordered list of tasks for one run plus its timing
type Plan struct {
	Tasks     []Task
	Delay     time.Duration
	Countdown int
}

// TotalCharacters returns the number of runes across all tasks
func (p *Plan) TotalCharacters() int {
	total := 0
	for _, t := range p.Tasks {
		total += utf8.RuneCountInString(t.Payload)
	}
	return total
}

// BuildPlan derives the typing plan for a configuration.
// File mode reads the source file; nothing else has side effects.
func BuildPlan(cfg *config.Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	plan := &Plan{
		Delay:     cfg.Delay(),
		Countdown: cfg.CountdownBeforeStart,
	}

	switch cfg.Mode {
	case config.ModeText:
		plan.Tasks = []Task{{Description: "text input", Payload: cfg.TextToType}}
		return plan, nil

	case config.ModeFile:
		task, err := fileTask(cfg)
		if err != nil {
			return nil, err
		}
		plan.Tasks = []Task{task}
		return plan, nil
	}

	return nil, &ValidationError{Err: fmt.Errorf("unknown mode %q", cfg.Mode)}
}

func fileTask(cfg *config.Config) (Task, error) {
	encoded, err := EncodeFile(cfg.FilePath)
	if err != nil {
		return Task{}, err
	}

	var script string
	switch cfg.TargetOS {
	case config.TargetLinux:
		script, err = LinuxReconstructionScript(encoded, cfg.OutputFilename)
	case config.TargetWindows:
		script, err = WindowsReconstructionScript(encoded, cfg.OutputFilename)
	default:
		err = fmt.Errorf("unknown target os %q", cfg.TargetOS)
	}
	if err != nil {
		return Task{}, &ValidationError{Path: cfg.FilePath, Err: err}
	}

	return Task{
		Description: "file transfer - " + string(cfg.TargetOS),
		Payload:     script,
	}, nil
}
