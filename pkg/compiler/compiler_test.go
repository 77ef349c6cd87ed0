package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/xplshn/tacc/pkg/casefile"
	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/parser"
	"github.com/xplshn/tacc/pkg/typeChecker"
)

func TestCaseFiles(t *testing.T) {
	files, err := filepath.Glob("../../testdata/*.md")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		src, err := os.ReadFile(file)
		require.NoError(t, err)
		cases, err := casefile.Extract(src)
		require.NoError(t, err, file)

		t.Run(filepath.Base(file), func(t *testing.T) {
			for _, c := range cases {
				c := c
				t.Run(c.Name, func(t *testing.T) {
					if diff := c.Diff(c.Run(context.Background())); diff != "" {
						t.Errorf("%s:%d:\n%s", file, c.Line, diff)
					}
				})
			}
		})
	}
}

func TestSemanticErrorsStopBeforeCodegen(t *testing.T) {
	cfg := config.NewConfig()
	res, err := compiler.CompileString(context.Background(), cfg, "bad", `(function __main__ (assign y 1))`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, compiler.ErrSemantic))
	require.NotNil(t, res)
	assert.NotNil(t, res.AST)
	assert.Equal(t, 1, res.Checker.ErrorCount())
	assert.Nil(t, res.Program)

	_, err = res.Render(cfg, "tac")
	assert.Error(t, err)
}

func TestSyntaxErrorIsNotSemantic(t *testing.T) {
	res, err := compiler.CompileString(context.Background(), config.NewConfig(), "broken", `(function f`)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.False(t, errors.Is(err, compiler.ErrSemantic))
	assert.True(t, parser.IsIncomplete(err))
}

func TestRenderBackends(t *testing.T) {
	cfg := config.NewConfig()
	res, err := compiler.CompileString(context.Background(), cfg, "ok", `(function __main__ (return))`)
	require.NoError(t, err)

	out, err := res.Render(cfg, "tac")
	require.NoError(t, err)
	assert.Equal(t, "main:\n    BeginFunc 0\n    return\n    EndFunc\n", out)

	_, err = res.Render(cfg, "qbe")
	assert.Error(t, err)
}

func TestUnitsShareNothing(t *testing.T) {
	cfg := config.NewConfig()
	_, err := compiler.CompileString(context.Background(), cfg, "a", `(function helper (return))`)
	require.NoError(t, err)

	_, err = compiler.CompileString(context.Background(), cfg, "b", `(function __main__ (call helper))`)
	assert.True(t, errors.Is(err, compiler.ErrSemantic))
}

func TestStrictProfileRejectsMixedArithmetic(t *testing.T) {
	src := `(function __main__ (init (declare float f) (+ 3 4.0)))`

	_, err := compiler.CompileString(context.Background(), config.NewConfig(), "default", src)
	require.NoError(t, err)

	cfg := config.NewConfig()
	require.NoError(t, cfg.ApplyProfile("strict"))
	res, err := compiler.CompileString(context.Background(), cfg, "strict", src)
	require.True(t, errors.Is(err, compiler.ErrSemantic))
	require.Len(t, res.Checker.Errors(), 1)
	assert.ErrorIs(t, res.Checker.Errors()[0], typeChecker.ErrTypeMismatch)
}
