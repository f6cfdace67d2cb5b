// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/bootstrap"
	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/pkg/config"
	"github.com/kraklabs/codegraph/pkg/langplugin"
	"github.com/kraklabs/codegraph/pkg/model"
	"github.com/kraklabs/codegraph/pkg/pipeline"
	"github.com/kraklabs/codegraph/pkg/pipeline/clone"
	"github.com/kraklabs/codegraph/pkg/pipeline/concurrency"
	"github.com/kraklabs/codegraph/pkg/pipeline/repomap"
)

// excludedDirs are never descended into while walking a repository.
var excludedDirs = map[string]bool{
	".git": true, ".codegraph": true, "vendor": true, "node_modules": true,
}

// runIndex walks the current repository, runs every source file the
// language plugin registry claims through the L1-L21 analysis pipeline
// (pkg/pipeline), and writes the resulting IR to the project's storage
// backend.
func runIndex(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	full := fs.Bool("full", false, "Force a full re-index, ignoring file-hash skip")
	_ = fs.Bool("incremental", false, "Incremental re-index (default; accepted for git-hook compatibility)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codegraph index [options]

Indexes the current repository into the local project graph, running
every stage the project's preset enables.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	meta, err := loadProjectMeta(globals.ConfigPath)
	if err != nil {
		cgerrors.FatalError(err, globals.JSON)
	}

	backend, err := bootstrap.OpenProject(bootstrap.ProjectConfig{
		ProjectID: meta.ProjectID,
		Preset:    config.Preset(meta.Preset),
	}, nil)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot open project storage", err.Error(), "Run 'codegraph init' first.", err), globals.JSON)
	}
	defer func() { _ = backend.Close() }()

	root, err := os.Getwd()
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInternalError("Cannot get current directory", err.Error(), "", err), globals.JSON)
	}

	configPath, err := resolveConfigPath(globals.ConfigPath)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInternalError("Cannot resolve config path", err.Error(), "", err), globals.JSON)
	}
	presetFromFile, patch, err := config.LoadFile(configPath)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewConfigError("Cannot parse project.yaml overrides", err.Error(), "Fix the stage/points_to/taint overrides or re-run 'codegraph init --force'.", err), globals.JSON)
	}
	preset := config.Preset(meta.Preset)
	if presetFromFile != "" {
		preset = presetFromFile
	}

	cfg, err := config.NewBuilder(preset).ApplyPatch(patch, config.ProvenanceFile).Build()
	if err != nil {
		cgerrors.FatalError(cgerrors.NewConfigError("Invalid stage configuration", err.Error(), "Check .codegraph/project.yaml's stage overrides.", err), globals.JSON)
	}

	registry := langplugin.Default()
	files, err := discoverSourceFiles(root, registry)
	if err != nil {
		cgerrors.FatalError(cgerrors.NewInputError("Cannot walk repository", err.Error(), ""), globals.JSON)
	}

	ctx := context.Background()
	now := time.Now()
	snapshotID := uuid.New().String()

	if err := backend.SaveRepository(ctx, model.Repository{
		RepoID: meta.ProjectID, Name: meta.ProjectID, LocalPath: root,
		DefaultBranch: "main", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot save repository", err.Error(), "", err), globals.JSON)
	}
	if err := backend.SaveSnapshot(ctx, model.Snapshot{
		SnapshotID: snapshotID, RepoID: meta.ProjectID, CreatedAt: now,
	}); err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot save snapshot", err.Error(), "", err), globals.JSON)
	}

	progress := NewProgressConfig(globals)
	bar := NewProgressBar(progress, int64(len(files)), "reading")

	var inputs []langplugin.FileInput
	fileText := make(map[string]string, len(files))
	var fileMetas []model.FileMetadata
	indexed, skipped := 0, 0

	for _, relPath := range files {
		content, err := os.ReadFile(filepath.Join(root, relPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot read %s: %v\n", relPath, err)
			skipped++
			continue
		}

		hash := model.ContentHash(model.NodeFile, content)
		if !*full {
			if existing, ok, _ := backend.GetFileMetadata(ctx, meta.ProjectID, snapshotID, relPath); ok && existing.ContentHash == hash {
				skipped++
				if bar != nil {
					_ = bar.Add(1)
				}
				continue
			}
		}

		inputs = append(inputs, langplugin.FileInput{
			RepoID: meta.ProjectID, SnapshotID: snapshotID,
			FilePath: relPath, Content: content,
		})
		fileText[relPath] = string(content)
		fileMetas = append(fileMetas, model.FileMetadata{
			RepoID: meta.ProjectID, SnapshotID: snapshotID, FilePath: relPath,
			ContentHash: hash, LastAnalyzed: now,
		})
		indexed++

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	run := pipeline.NewRun(meta.ProjectID, snapshotID)
	dag, ptaStage, symbolsStage := buildDAG(cfg, registry, inputs, fileText)

	runStart := time.Now()
	spinner := NewSpinner(progress, "analyzing")
	if err := dag.Run(ctx, run); err != nil {
		cgerrors.FatalError(cgerrors.NewInternalError("Pipeline run failed", err.Error(), "", err), globals.JSON)
	}
	if spinner != nil {
		_ = spinner.Finish()
	}
	elapsed := time.Since(runStart)

	if err := backend.SaveNodes(ctx, run.Doc.Nodes); err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot save nodes", err.Error(), "", err), globals.JSON)
	}
	if err := backend.SaveEdges(ctx, run.Doc.Edges); err != nil {
		cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot save edges", err.Error(), "", err), globals.JSON)
	}
	if len(run.Chunks) > 0 {
		if err := backend.SaveChunks(ctx, run.Chunks); err != nil {
			cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot save chunks", err.Error(), "", err), globals.JSON)
		}
	}
	if len(fileMetas) > 0 {
		if err := backend.SaveFileMetadata(ctx, fileMetas); err != nil {
			cgerrors.FatalError(cgerrors.NewDatabaseError("Cannot save file metadata", err.Error(), "", err), globals.JSON)
		}
	}

	if globals.JSON {
		totalLOC := 0
		for _, text := range fileText {
			totalLOC += strings.Count(text, "\n") + 1
		}
		result := pipeline.NewIndexingResult(run, indexed, skipped, 0, totalLOC, elapsed)
		result.FullResult = buildFullResult(run, ptaStage, symbolsStage)
		if err := output.JSON(result); err != nil {
			cgerrors.FatalError(cgerrors.NewInternalError("Cannot encode result", err.Error(), "", err), globals.JSON)
		}
		return
	}

	if !globals.Quiet {
		fmt.Printf("Indexed %d file(s), skipped %d unchanged.\n", indexed, skipped)
		if len(run.Diagnostics) > 0 {
			fmt.Printf("%d diagnostic(s) recorded (parse/analysis warnings); see 'codegraph status' for a summary.\n", len(run.Diagnostics))
		}
	}
}

// buildFullResult assembles §6's "full_result" shape from a finished run
// and the optional Symbols/PointsTo stage instances buildDAG returned.
func buildFullResult(run *pipeline.Run, ptaStage *pipeline.PointsToStage, symbolsStage *pipeline.SymbolsStage) *pipeline.FullResult {
	full := &pipeline.FullResult{
		Nodes:  run.Doc.Nodes,
		Edges:  run.Doc.Edges,
		Chunks: run.Chunks,
	}
	if symbolsStage != nil && symbolsStage.Table != nil {
		full.Symbols = symbolsStage.Table.Names()
	}
	if ptaStage != nil && len(ptaStage.Results) > 0 {
		summary := &pipeline.PointsToSummary{ModeUsed: string(ptaStage.Mode)}
		aliasPairs := 0
		for _, res := range ptaStage.Results {
			summary.VariablesCount += len(res.PointsTo)
			for _, objs := range res.PointsTo {
				if len(objs) > 1 {
					aliasPairs += len(objs) - 1
				}
			}
		}
		summary.AliasPairs = aliasPairs
		full.PointsToSummary = summary
	}
	return full
}

// buildDAG assembles the subset of pipeline.Stage the project's
// configuration enables, in an order consistent with every stage's
// hard dependencies (pipeline.DependenciesOf). It also returns the
// Symbols/PointsTo stage instances (nil if disabled) so a caller building
// a pipeline.FullResult can read their populated fields after dag.Run.
func buildDAG(cfg *config.Config, registry *langplugin.Registry, inputs []langplugin.FileInput, fileText map[string]string) (*pipeline.DAG, *pipeline.PointsToStage, *pipeline.SymbolsStage) {
	var stages []pipeline.Stage
	var symbolsStage *pipeline.SymbolsStage
	var pointsToStage *pipeline.PointsToStage

	stages = append(stages, &pipeline.IRBuildStage{Registry: registry, Files: inputs})

	if cfg.Enabled(pipeline.L2Chunking) {
		stages = append(stages, &pipeline.ChunkingStage{FileText: fileText})
	}
	if cfg.Enabled(pipeline.L3CrossFile) {
		stages = append(stages, &pipeline.CrossFileStage{})
	}
	if cfg.Enabled(pipeline.L4Occurrences) {
		stages = append(stages, &pipeline.OccurrencesStage{})
	}
	if cfg.Enabled(pipeline.L5Symbols) {
		symbolsStage = &pipeline.SymbolsStage{}
		stages = append(stages, symbolsStage)
	}
	if cfg.Enabled(pipeline.L6PointsTo) {
		pointsToStage = &pipeline.PointsToStage{
			Mode:           cfg.Settings.PointsTo.Mode,
			FieldSensitive: cfg.Settings.PointsTo.FieldSensitive,
		}
		stages = append(stages, pointsToStage)
	}
	if cfg.Enabled(pipeline.L7Heap) {
		stages = append(stages, &pipeline.HeapStage{})
	}
	if cfg.Enabled(pipeline.L8SSA) {
		stages = append(stages, &pipeline.SSAStage{})
	}
	if cfg.Enabled(pipeline.L9DFG) {
		stages = append(stages, &pipeline.DFGStage{})
	}
	if cfg.Enabled(pipeline.L14Taint) {
		stages = append(stages, &pipeline.TaintStage{
			Config:     cfg.Settings.Taint.Config,
			Sources:    cfg.Settings.Taint.Sources,
			Sinks:      cfg.Settings.Taint.Sinks,
			Sanitizers: cfg.Settings.Taint.Sanitizers,
		})
	}
	if cfg.Enabled(pipeline.L15Propagation) {
		stages = append(stages, &pipeline.PropagationStage{Config: cfg.Settings.Propagation})
	}
	if cfg.Enabled(pipeline.L16RepoMap) {
		builder := repomap.NewBuilder()
		builder.SymbolBudget = cfg.Settings.RepoMap.SymbolBudget
		builder.Ranker.Config.Damping = cfg.Settings.RepoMap.Damping
		builder.Ranker.Config.MaxIterations = cfg.Settings.RepoMap.MaxIterations
		builder.Ranker.Config.Tolerance = cfg.Settings.RepoMap.Tolerance
		stages = append(stages, &pipeline.RepoMapStage{Builder: builder})
	}
	if cfg.Enabled(pipeline.L17PDG) {
		stages = append(stages, &pipeline.PDGStage{})
	}
	if cfg.Enabled(pipeline.L18Slicing) {
		stages = append(stages, &pipeline.SlicingStage{})
	}
	if cfg.Enabled(pipeline.L20Clone) {
		detector := clone.NewDetector()
		if cfg.Settings.Clone.MinSimilarity > 0 {
			detector.MinSimilarity = cfg.Settings.Clone.MinSimilarity
		}
		stages = append(stages, &pipeline.CloneStage{Detector: detector})
	}
	if cfg.Enabled(pipeline.L21Concurrency) {
		stages = append(stages, &pipeline.ConcurrencyStage{Detector: concurrency.NewDetector()})
	}

	return pipeline.NewDAG(stages...), pointsToStage, symbolsStage
}

// discoverSourceFiles returns every file under root whose extension a
// plugin in registry claims, relative to root, skipping excludedDirs.
func discoverSourceFiles(root string, registry *langplugin.Registry) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if excludedDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if registry.ForFile(path) == nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

