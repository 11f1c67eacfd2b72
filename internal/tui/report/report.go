// ABOUTME: Human-readable rendering of recommendations, inspections, and discovery results
// ABOUTME: Styled with lipgloss; sizes formatted with go-humanize

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/markalston/spark-sizing-advisor/internal/tui/styles"
	"github.com/markalston/spark-sizing-advisor/internal/tui/widgets"
)

const barWidth = 40

// Size formats megabytes as a binary size, e.g. 16384 -> "16 GiB".
func Size(mb int) string {
	if mb < 0 {
		return "-" + Size(-mb)
	}
	return humanize.IBytes(uint64(mb) << 20)
}

// Recommendation renders the executor settings for one node.
func Recommendation(node models.NodeShape, rec models.ExecutorRecommendation) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Executor recommendation: " + node.Label()))
	sb.WriteString("\n")
	sb.WriteString(widgets.WorkloadBadge(rec.ConcurrentGPUTasks) + " " + widgets.AllocationBadge(rec.TotalAllocatedMB(), rec.UsableMemoryMB))
	sb.WriteString("\n\n")

	rows := [][2]string{
		{"Executor cores", fmt.Sprintf("%d", rec.ExecutorCores)},
		{"Usable memory", sizeWithMB(rec.UsableMemoryMB)},
		{"Ideal heap", sizeWithMB(rec.IdealHeapMB)},
		{"Heap", sizeWithMB(rec.HeapMB)},
		{"Overhead", sizeWithMB(rec.OverheadMB)},
		{"Pinned pool", sizeWithMB(rec.PinnedMemoryMB)},
		{"Pageable pool", sizeWithMB(rec.PageablePoolMB)},
		{"Max partition", sizeWithMB(rec.MaxPartitionMB)},
	}
	if rec.GPUEnabled() {
		rows = append(rows, [2]string{"Concurrent GPU tasks", fmt.Sprintf("%d", rec.ConcurrentGPUTasks)})
	}
	sb.WriteString(fields(rows))
	sb.WriteString("\n")

	sb.WriteString(allocationBar(rec))
	sb.WriteString("\n\n")

	sb.WriteString(styles.Subtitle.Render("Spark properties"))
	sb.WriteString("\n")
	sb.WriteString(Properties(rec.SparkProperties()))

	return sb.String()
}

// Properties renders key/value lines aligned on the longest key.
func Properties(props []models.SparkProperty) string {
	width := 0
	for _, p := range props {
		width = max(width, len(p.Key))
	}

	var sb strings.Builder
	for _, p := range props {
		key := styles.KeyStyle.Render(fmt.Sprintf("%-*s", width, p.Key))
		sb.WriteString(fmt.Sprintf("  %s  %s\n", key, p.Value))
	}
	return sb.String()
}

// Batch renders one row per node with its heap, off-heap total, and GPU tasks.
// Nodes that could not be sized show their error instead.
func Batch(results []models.NodeRecommendation) string {
	if len(results) == 0 {
		return styles.LabelStyle.Render("  No nodes to compare\n")
	}

	header := []string{"NODE", "CORES", "MEMORY", "HEAP", "OFF-HEAP", "GPU TASKS"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, BatchRow(r))
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths)-1 {
				widths[i] = max(widths[i], len(cell))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + styles.LabelStyle.Render(joinPadded(header, widths)) + "\n")
	for i, row := range rows {
		line := joinPadded(row, widths)
		if results[i].Error != "" {
			line = styles.StatusCritical.Render(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// BatchRow returns the cells Batch renders for one result.
func BatchRow(r models.NodeRecommendation) []string {
	row := []string{r.Node.Label(), fmt.Sprintf("%d", r.Node.CoreCount), Size(r.Node.MemoryMB)}
	if r.Recommendation == nil {
		return append(row, "error: "+r.Error, "", "")
	}
	rec := r.Recommendation
	tasks := "-"
	if rec.GPUEnabled() {
		tasks = fmt.Sprintf("%d", rec.ConcurrentGPUTasks)
	}
	return append(row, Size(rec.HeapMB), Size(rec.OffHeapMB()), tasks)
}

// Inspection renders a cluster summary, compatibility findings, and the
// recommendation for its workers.
func Inspection(in *models.ClusterInspection) string {
	var sb strings.Builder

	name := in.ClusterName
	if name == "" {
		name = in.ClusterID
	}
	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s cluster: %s", strings.ToUpper(in.Provider), name)))
	sb.WriteString("\n")

	rows := [][2]string{}
	if in.State != "" {
		rows = append(rows, [2]string{"State", in.State})
	}
	location := in.Region
	if in.Zone != "" {
		location = in.Zone
	}
	if location != "" {
		rows = append(rows, [2]string{"Location", location})
	}
	if in.SoftwareVersion != "" {
		rows = append(rows, [2]string{"Software", in.SoftwareVersion})
	}
	rows = append(rows,
		[2]string{"Workers", fmt.Sprintf("%d x %s", in.WorkerCount, in.WorkerMachineType)},
		[2]string{"Worker shape", fmt.Sprintf("%d cores, %s", in.Worker.CoreCount, Size(in.Worker.MemoryMB))},
		[2]string{"Local SSDs", fmt.Sprintf("%d", in.WorkerLocalSSDs)},
	)
	if in.GPU != nil {
		rows = append(rows, [2]string{"GPU", fmt.Sprintf("%d x %s (%s)", in.GPU.Count, in.GPU.Name, Size(in.GPU.MemoryMB))})
	}
	sb.WriteString(fields(rows))
	sb.WriteString("\n")

	if in.Compatible() {
		sb.WriteString(widgets.CompatibilityBadge(0) + " " + styles.StatusOK.Render("Compatible with GPU acceleration"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(widgets.CompatibilityBadge(len(in.Incompatibilities)) + " " +
			styles.StatusWarning.Render(fmt.Sprintf("%d compatibility finding(s)", len(in.Incompatibilities))))
		sb.WriteString("\n")
		for _, f := range in.Incompatibilities {
			sb.WriteString(fmt.Sprintf("  %s %s: %s -> %s\n", styles.StatusWarning.Render("!"), f.Criterion, f.Current, f.Suggested))
			sb.WriteString("    " + styles.LabelStyle.Render(f.Comment) + "\n")
		}
	}

	if len(in.SparkProperties) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.Render("Current Spark properties"))
		sb.WriteString("\n")
		sb.WriteString(Properties(sortedProperties(in.SparkProperties)))
	}

	sb.WriteString("\n")
	switch {
	case in.Recommendation != nil:
		sb.WriteString(Recommendation(in.Worker, *in.Recommendation))
	case in.RecommendationError != "":
		sb.WriteString(styles.StatusCritical.Render("No recommendation: " + in.RecommendationError))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Infrastructure renders discovered hosts and their recommendations.
func Infrastructure(infra *models.InfrastructureResponse) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("vSphere datacenter: %s", infra.Datacenter)))
	sb.WriteString("\n")
	sb.WriteString(fields([][2]string{
		{"Usable hosts", fmt.Sprintf("%d", len(infra.Hosts))},
		{"Discovered", humanize.Time(infra.DiscoveredAt)},
	}))
	sb.WriteString("\n")
	sb.WriteString(Batch(infra.Results))
	return sb.String()
}

// Constants renders the constants the calculator runs with.
func Constants(c models.ClusterConstants, source string) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Sizing constants"))
	sb.WriteString("\n")
	sb.WriteString(fields([][2]string{
		{"Source", source},
		{"max_pinned_memory_mb", sizeWithMB(c.MaxPinnedMemoryMB)},
		{"default_pageable_pool_mb", sizeWithMB(c.DefaultPageablePoolMB)},
		{"max_gpu_concurrent", fmt.Sprintf("%d", c.MaxGPUConcurrent)},
		{"gpu_mem_per_task_mb", sizeWithMB(c.GPUMemPerTaskMB)},
		{"heap_per_core_mb", sizeWithMB(c.HeapPerCoreMB)},
		{"heap_overhead_fraction", fmt.Sprintf("%g", c.HeapOverheadFraction)},
		{"system_reserve_mb", sizeWithMB(c.SystemReserveMB)},
		{"max_sql_files_partitions_mb", sizeWithMB(c.MaxSQLFilesPartitionsMB)},
	}))
	return sb.String()
}

func allocationBar(rec models.ExecutorRecommendation) string {
	bar := styles.AllocationBar(rec.UsableMemoryMB, barWidth,
		styles.Segment{MB: rec.HeapMB, Color: styles.Heap},
		styles.Segment{MB: rec.OverheadMB, Color: styles.Overhead},
		styles.Segment{MB: rec.PinnedMemoryMB, Color: styles.Pinned},
		styles.Segment{MB: rec.PageablePoolMB, Color: styles.Pageable},
	)
	legend := strings.Join([]string{
		swatch(styles.Heap, "heap"),
		swatch(styles.Overhead, "overhead"),
		swatch(styles.Pinned, "pinned"),
		swatch(styles.Pageable, "pageable"),
	}, "  ")
	free := rec.UsableMemoryMB - rec.TotalAllocatedMB()
	return fmt.Sprintf("  %s %s free\n  %s", bar, Size(free), legend)
}

func swatch(c lipgloss.Color, label string) string {
	return lipgloss.NewStyle().Foreground(c).Render("■") + " " + styles.LabelStyle.Render(label)
}

func fields(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	var sb strings.Builder
	for _, r := range rows {
		label := styles.LabelStyle.Render(fmt.Sprintf("%-*s", width+1, r[0]+":"))
		sb.WriteString(fmt.Sprintf("  %s %s\n", label, styles.ValueStyle.Render(r[1])))
	}
	return sb.String()
}

func sizeWithMB(mb int) string {
	return fmt.Sprintf("%s (%d MB)", Size(mb), mb)
}

func joinPadded(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			padded[i] = cell
			continue
		}
		padded[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func sortedProperties(props map[string]string) []models.SparkProperty {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]models.SparkProperty, len(keys))
	for i, k := range keys {
		out[i] = models.SparkProperty{Key: k, Value: props[k]}
	}
	return out
}
