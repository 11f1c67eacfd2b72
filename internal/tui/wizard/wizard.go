// ABOUTME: Interactive node shape wizard built on huh forms
// ABOUTME: Collects cores, memory, and GPU for the recommend command

package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/markalston/spark-sizing-advisor/services"
)

const (
	gpuNone  = "none"
	gpuOther = "other"
)

// Wizard collects a node shape through a two-step form
type Wizard struct {
	// Form field values (strings for huh)
	name      string
	cores     string
	memoryMB  string
	gpu       string
	gpuMemory string
	gpuCount  string
}

// New creates a wizard prefilled from seed. Zero fields fall back to an
// 8-core, 64 GB node without a GPU.
func New(seed models.NodeShape) *Wizard {
	w := &Wizard{
		name:     seed.Name,
		cores:    "8",
		memoryMB: "65536",
		gpu:      gpuNone,
		gpuCount: "1",
	}
	if seed.CoreCount > 0 {
		w.cores = strconv.Itoa(seed.CoreCount)
	}
	if seed.MemoryMB > 0 {
		w.memoryMB = strconv.Itoa(seed.MemoryMB)
	}
	if seed.GPUCount > 0 {
		w.gpuCount = strconv.Itoa(seed.GPUCount)
	}
	if seed.GPUMemoryMB > 0 {
		w.gpu = gpuOther
		w.gpuMemory = strconv.Itoa(seed.GPUMemoryMB)
		if gpu, ok := services.ParseSupportedGPU(seed.GPUName); ok {
			if mb, _ := services.GPUMemoryMB(gpu); mb == seed.GPUMemoryMB {
				w.gpu = gpu
			}
		}
	}
	return w
}

// createTheme returns the huh theme used by the wizard
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	cyan := lipgloss.Color("#06B6D4")      // Cyan-500 - primary
	cyanLight := lipgloss.Color("#22D3EE") // Cyan-400 - accents
	gray := lipgloss.Color("#9CA3AF")      // Gray-400 - muted
	red := lipgloss.Color("#F87171")       // Red-400 - errors

	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyanLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(cyan).
		SetString("> ")
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// gpuOptions lists every supported GPU with its memory, plus none and other
func gpuOptions() []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("No GPU", gpuNone)}
	for _, gpu := range services.SupportedGPUs {
		mb, _ := services.GPUMemoryMB(gpu)
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d MB)", gpu, mb), gpu))
	}
	return append(options, huh.NewOption("Other (enter memory)", gpuOther))
}

// Form builds the huh form bound to the wizard's fields
func (w *Wizard) Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Node name").
				Description("Optional label, e.g. a machine type").
				Placeholder("n1-standard-16").
				CharLimit(64).
				Value(&w.name),
			huh.NewInput().
				Title("CPU cores").
				Description("Cores (vCPUs) per worker node").
				CharLimit(4).
				Value(&w.cores).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Memory (MB)").
				Description("Total memory per worker node").
				CharLimit(8).
				Value(&w.memoryMB).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("GPU").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(gpuOptions()...).
				Value(&w.gpu),
		).Title("Worker node").
			Description("Describe one Spark worker node"),
		huh.NewGroup(
			huh.NewInput().
				Title("GPU memory (MB)").
				Description("Memory per GPU device").
				CharLimit(7).
				Value(&w.gpuMemory).
				Validate(validatePositiveInt),
		).Title("GPU memory").
			WithHideFunc(func() bool { return w.gpu != gpuOther }),
		huh.NewGroup(
			huh.NewInput().
				Title("GPUs per node").
				CharLimit(2).
				Value(&w.gpuCount).
				Validate(validatePositiveInt),
		).Title("GPU count").
			WithHideFunc(func() bool { return w.gpu == gpuNone }),
	).WithTheme(createTheme())
}

// Run shows the form and returns the collected node shape
func (w *Wizard) Run() (models.NodeShape, error) {
	if err := w.Form().Run(); err != nil {
		return models.NodeShape{}, err
	}
	return w.Node()
}

// Node converts the field values into a node shape
func (w *Wizard) Node() (models.NodeShape, error) {
	cores, err := parseField("cores", w.cores)
	if err != nil {
		return models.NodeShape{}, err
	}
	memory, err := parseField("memory", w.memoryMB)
	if err != nil {
		return models.NodeShape{}, err
	}

	node := models.NodeShape{
		Name:      strings.TrimSpace(w.name),
		CoreCount: cores,
		MemoryMB:  memory,
	}

	switch w.gpu {
	case gpuNone, "":
		return node, nil
	case gpuOther:
		node.GPUMemoryMB, err = parseField("GPU memory", w.gpuMemory)
		if err != nil {
			return models.NodeShape{}, err
		}
	default:
		mb, ok := services.GPUMemoryMB(w.gpu)
		if !ok {
			return models.NodeShape{}, fmt.Errorf("unsupported GPU %q", w.gpu)
		}
		node.GPUName = w.gpu
		node.GPUMemoryMB = mb
	}

	node.GPUCount, err = parseField("GPU count", w.gpuCount)
	if err != nil {
		return models.NodeShape{}, err
	}
	return node, nil
}

func parseField(field, value string) (int, error) {
	if err := validatePositiveInt(value); err != nil {
		return 0, fmt.Errorf("%s %w", field, err)
	}
	v, _ := strconv.Atoi(strings.TrimSpace(value))
	return v, nil
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}
