// ABOUTME: Tests for the comparison table model
// ABOUTME: Drives the model with key messages and checks the rendered view

package compare

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/spark-sizing-advisor/models"
)

func testResults() []models.NodeRecommendation {
	gpu := models.ExecutorRecommendation{
		ExecutorCores: 8, UsableMemoryMB: 63488, IdealHeapMB: 16384, HeapMB: 16384,
		OverheadMB: 1638, PinnedMemoryMB: 4096, PageablePoolMB: 1024,
		ConcurrentGPUTasks: 2, MaxPartitionMB: 512,
	}
	return []models.NodeRecommendation{
		{
			Node:            models.NodeShape{Name: "gpu-node", CoreCount: 8, MemoryMB: 65536, GPUMemoryMB: 16384},
			Recommendation:  &gpu,
			SparkProperties: gpu.SparkProperties(),
		},
		{
			Node:  models.NodeShape{Name: "bad-node", CoreCount: 0, MemoryMB: 1024},
			Error: "invalid core_count: must be positive, got 0",
		},
	}
}

func TestViewShowsSelectedDetail(t *testing.T) {
	m := New(testResults())
	view := m.View()

	if !strings.Contains(view, "gpu-node") {
		t.Error("expected view to list gpu-node")
	}
	if !strings.Contains(view, "spark.rapids.sql.concurrentGpuTasks") {
		t.Error("expected detail panel with properties of the first node")
	}
}

func TestCursorMovesToErrorRow(t *testing.T) {
	var model tea.Model = New(testResults())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})

	m := model.(Model)
	r, ok := m.Selected()
	if !ok {
		t.Fatal("expected a selection")
	}
	if r.Node.Name != "bad-node" {
		t.Errorf("expected bad-node selected, got %s", r.Node.Name)
	}
	if !strings.Contains(m.View(), "must be positive") {
		t.Error("expected error detail for the selected row")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := New(testResults()).Update(key)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected QuitMsg for %q", key.String())
		}
	}
}

func TestWindowSize(t *testing.T) {
	model, cmd := New(testResults()).Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if cmd != nil {
		t.Error("expected no command on resize")
	}
	m := model.(Model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("expected 120x40, got %dx%d", m.width, m.height)
	}
}

func TestEmptyView(t *testing.T) {
	if view := New(nil).View(); !strings.Contains(view, "No nodes to compare") {
		t.Errorf("unexpected view %q", view)
	}
}
