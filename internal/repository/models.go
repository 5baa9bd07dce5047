// Package repository persists generation-run history.
package repository

import (
	"time"

	"github.com/covergen/pkg/model"
)

// GenerationRun represents the generation_runs table: one record per
// invocation of the generator, capturing the request and how it ended.
type GenerationRun struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID  string `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	Mode     string `gorm:"column:mode;type:varchar(32)"`
	Columns  int    `gorm:"column:columns"`
	Levels   string `gorm:"column:levels;type:varchar(512)"`
	Strength int    `gorm:"column:strength"`
	SetSize  int    `gorm:"column:set_size"`
	Delta    int    `gorm:"column:delta"`

	Status        string `gorm:"column:status;type:varchar(32)"`
	RowCount      int    `gorm:"column:row_count"`
	PartialRows   int    `gorm:"column:partial_rows"`
	FinalScore    int64  `gorm:"column:final_score"`
	TotalProblems int64  `gorm:"column:total_problems"`
	OutputFile    string `gorm:"column:output_file;type:varchar(512)"`
	DurationMs    int64  `gorm:"column:duration_ms"`

	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for GenerationRun.
func (GenerationRun) TableName() string {
	return "generation_runs"
}

// NewGenerationRun builds a run record from a request and its result.
func NewGenerationRun(req *model.GenerationRequest, result *model.GenerationResult, outputFile string) *GenerationRun {
	return &GenerationRun{
		RunUUID:       req.RunUUID,
		Mode:          req.Mode.String(),
		Columns:       req.Profile.Columns,
		Levels:        encodeLevels(req.Profile.Levels),
		Strength:      req.T,
		SetSize:       req.D,
		Delta:         req.Delta,
		Status:        string(result.Status),
		RowCount:      len(result.Rows),
		PartialRows:   result.RowsFromPartial,
		FinalScore:    result.Score,
		TotalProblems: result.TotalProblems,
		OutputFile:    outputFile,
		DurationMs:    result.Duration.Milliseconds(),
	}
}
