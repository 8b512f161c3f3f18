package instrument

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanema/typefence/src/conf"
)

func TestShouldInstrument(t *testing.T) {
	t.Parallel()
	finder := NewFinder([]string{"spam", "ham.eggs"})
	tests := []struct {
		name string
		want bool
	}{
		{name: "spam", want: true},
		{name: "spam.utils", want: true},
		{name: "spam.utils.deep", want: true},
		{name: "spam_eggs", want: false},
		{name: "spammer", want: false},
		{name: "ham", want: false},
		{name: "ham.eggs", want: true},
		{name: "ham.eggs.breakfast", want: true},
		{name: "ham.eggsandwich", want: false},
		{name: "other", want: false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, finder.ShouldInstrument(test.name))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	t.Run("parses the yaml surface", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), conf.CONFIGFILE)
		src := "packages:\n  - spam\n  - ham.eggs\nwarn: true\ntrace: \"%H:%M:%S\"\n"
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"spam", "ham.eggs"}, cfg.Packages)
		assert.True(t, cfg.Warn)
		assert.Equal(t, "%H:%M:%S", cfg.Trace)
		assert.True(t, cfg.Finder().ShouldInstrument("spam.utils"))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), conf.CONFIGFILE)
		require.NoError(t, os.WriteFile(path, []byte("packages: [unclosed"), 0o644))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "malformed config")
	})
}

func TestWarnf(t *testing.T) {
	t.Parallel()
	out := bytes.NewBuffer(nil)
	cfg := &Config{Warn: false}
	cfg.Warnf(out, "%s was skipped", "spam.utils")
	assert.Empty(t, out.String())

	cfg.Warn = true
	cfg.Warnf(out, "%s was skipped", "spam.utils")
	assert.Equal(t, "warning: spam.utils was skipped\n", out.String())

	var nilCfg *Config
	nilCfg.Warnf(out, "ignored")
	assert.Equal(t, "warning: spam.utils was skipped\n", out.String())
}

func TestTracer(t *testing.T) {
	t.Parallel()
	t.Run("writes timestamped lines", func(t *testing.T) {
		t.Parallel()
		out := bytes.NewBuffer(nil)
		tracer, err := NewTracer(out, conf.TRACEPATTERN)
		require.NoError(t, err)
		tracer.Logf("checked %v callables", 3)
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] checked 3 callables\n$`, out.String())
	})

	t.Run("rejects a bad pattern", func(t *testing.T) {
		t.Parallel()
		_, err := NewTracer(nil, "%&")
		assert.Error(t, err)
	})

	t.Run("nil tracer discards", func(t *testing.T) {
		t.Parallel()
		var tracer *Tracer
		tracer.Logf("nothing to see")
	})
}
