// Package usage reports filesystem capacity per drive root.
package usage

import (
	"fmt"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/drivekeep/drivekeep/internal/domain/drive"
)

// DriveUsage is the capacity report for one drive root, recomputed from
// the filesystem on every request.
type DriveUsage struct {
	Drive       string  `json:"drive"`
	TotalBytes  uint64  `json:"total_bytes"`
	UsedBytes   uint64  `json:"used_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	Total       string  `json:"total"`
	Used        string  `json:"used"`
	Free        string  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// Reporter queries Statfs for each registered drive.
type Reporter struct {
	reg *drive.Registry
}

// NewReporter creates a usage reporter over the drive registry.
func NewReporter(reg *drive.Registry) *Reporter {
	return &Reporter{reg: reg}
}

// Report returns usage for every drive. A drive whose root cannot be
// statted is reported with an error rather than silently dropped.
func (r *Reporter) Report() ([]DriveUsage, error) {
	drives := r.reg.List()
	out := make([]DriveUsage, 0, len(drives))
	for _, d := range drives {
		u, err := statDrive(d)
		if err != nil {
			return nil, fmt.Errorf("drive %s: %w", d.Label, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// One returns usage for a single drive.
func (r *Reporter) One(label string) (DriveUsage, error) {
	d, ok := r.reg.Get(label)
	if !ok {
		return DriveUsage{}, drive.ErrUnknownDrive
	}
	return statDrive(d)
}

func statDrive(d drive.Drive) (DriveUsage, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(d.Root, &st); err != nil {
		return DriveUsage{}, err
	}

	total := st.Blocks * uint64(st.Bsize)
	free := st.Bavail * uint64(st.Bsize)
	used := total - st.Bfree*uint64(st.Bsize)

	percent := 0.0
	if total > 0 {
		percent = float64(used) / float64(total) * 100
	}

	return DriveUsage{
		Drive:       d.Label,
		TotalBytes:  total,
		UsedBytes:   used,
		FreeBytes:   free,
		Total:       humanize.IBytes(total),
		Used:        humanize.IBytes(used),
		Free:        humanize.IBytes(free),
		UsedPercent: percent,
	}, nil
}
