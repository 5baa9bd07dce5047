package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/covergen/internal/engine"
	"github.com/covergen/internal/parser"
	"github.com/covergen/internal/repository"
	"github.com/covergen/internal/storage"
	"github.com/covergen/pkg/config"
	"github.com/covergen/pkg/errors"
	"github.com/covergen/pkg/model"
	"github.com/covergen/pkg/utils"
)

func testConfig() *config.Config {
	cfg, _ := config.LoadFromReader("yaml", []byte(``))
	cfg.Engine.StagnationLimit = 60
	return cfg
}

func coverageParams() parser.Parameters {
	return parser.Parameters{
		Profile: model.Profile{Columns: 3, Levels: []int{2, 2, 2}},
		Mode:    model.PropertyCoverage,
		T:       2,
	}
}

func TestService_Run_WritesToStdout(t *testing.T) {
	svc := New(testConfig(), &utils.NullLogger{}, nil, nil)
	var out bytes.Buffer
	svc.stdout = &out

	result, err := svc.Run(context.Background(), &RunOptions{
		Params: coverageParams(),
		Seed:   11,
		Output: engine.OutputSilent,
	})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusCompleted, result.Status)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, len(result.Rows))
	for _, line := range lines {
		assert.Len(t, strings.Split(line, "\t"), 3)
	}
}

func TestService_Run_WritesToFile(t *testing.T) {
	svc := New(testConfig(), &utils.NullLogger{}, nil, nil)
	path := filepath.Join(t.TempDir(), "array.txt")

	result, err := svc.Run(context.Background(), &RunOptions{
		Params:     coverageParams(),
		Seed:       11,
		OutputFile: path,
		Output:     engine.OutputSilent,
	})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusCompleted, result.Status)
	assert.FileExists(t, path)
}

func TestService_Run_RejectsInfeasibleParams(t *testing.T) {
	svc := New(testConfig(), &utils.NullLogger{}, nil, nil)

	params := coverageParams()
	params.T = 0
	_, err := svc.Run(context.Background(), &RunOptions{Params: params})
	require.Error(t, err)
	assert.True(t, errors.IsInfeasible(err))
}

func TestService_Run_ExtendsPartial(t *testing.T) {
	svc := New(testConfig(), &utils.NullLogger{}, nil, nil)
	var out bytes.Buffer
	svc.stdout = &out

	result, err := svc.Run(context.Background(), &RunOptions{
		Params:  coverageParams(),
		Partial: [][]int{{1, 1, 1}},
		Seed:    11,
		Output:  engine.OutputSilent,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, result.Rows[0])
	assert.True(t, strings.HasPrefix(out.String(), "1\t1\t1\n"))
}

func TestService_Run_RecordsHistoryAndArtifact(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&repository.GenerationRun{}))
	repo := repository.NewGormRunRepository(db)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := New(testConfig(), &utils.NullLogger{}, repo, store)
	var out bytes.Buffer
	svc.stdout = &out

	result, err := svc.Run(context.Background(), &RunOptions{
		Params:   coverageParams(),
		RunUUID:  "svc-test-1",
		Seed:     11,
		Output:   engine.OutputSilent,
		StoreRun: true,
	})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusCompleted, result.Status)

	// History record saved.
	run, err := repo.GetRunByUUID(context.Background(), "svc-test-1")
	require.NoError(t, err)
	assert.Equal(t, len(result.Rows), run.RowCount)
	assert.Equal(t, "coverage", run.Mode)

	// Artifact uploaded.
	ok, err := store.Exists(context.Background(), "runs/svc-test-1/array.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}
