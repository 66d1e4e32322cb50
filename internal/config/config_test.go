package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/config"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		Convey("Then tier dimensions match the fixed layout", func() {
			So(cfg.StrokeDims, ShouldEqual, 30)
			So(cfg.ImageDims, ShouldEqual, 512)
			So(cfg.TemporalDims, ShouldEqual, 32)
		})

		Convey("And the hot budget and pool defaults are set", func() {
			So(cfg.HotBudgetMS, ShouldEqual, 16)
			So(cfg.WorkerCount, ShouldEqual, 2)
		})

		Convey("And it validates", func() {
			So(cfg.Validate(), ShouldBeNil)
		})
	})
}

func TestLoadEnvOverride(t *testing.T) {
	Convey("Given DNA_WORKER_COUNT in the environment", t, func() {
		t.Setenv("DNA_WORKER_COUNT", "8")
		t.Setenv("DNA_STORAGE_MODE", "file")

		cfg, err := config.Load(context.Background())

		Convey("Then env values beat defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.WorkerCount, ShouldEqual, 8)
			So(cfg.StorageMode, ShouldEqual, config.StorageFile)
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		f, err := os.CreateTemp(t.TempDir(), "dna-*.yaml")
		So(err, ShouldBeNil)
		_, err = f.WriteString("hot_budget_ms: 8\nsnapshot_cadence: 5\n")
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)
		t.Setenv("DNA_CONFIG", f.Name())

		cfg, err := config.Load(context.Background())

		Convey("Then file values beat defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.HotBudgetMS, ShouldEqual, 8)
			So(cfg.SnapshotCadence, ShouldEqual, 5)
		})
	})
}

func TestValidateRejectsBadValues(t *testing.T) {
	Convey("Given invalid configurations", t, func() {
		cases := []func(*config.Config){
			func(c *config.Config) { c.StrokeDims = 0 },
			func(c *config.Config) { c.HotBudgetMS = -1 },
			func(c *config.Config) { c.WorkerCount = 0 },
			func(c *config.Config) { c.StorageMode = "redis" },
			func(c *config.Config) { c.AestheticMode = "lenient" },
			func(c *config.Config) { c.ConfidenceLowStrokes = 300 },
		}

		for _, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		}
	})
}
