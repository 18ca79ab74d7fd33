package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/axcpt/internal/adapters/tabular"
	"github.com/okian/axcpt/internal/config"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

// run executes the root command with args and captures both streams.
func run(args ...string) (string, string, error) {
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "AXCPT_") {
			_ = os.Unsetenv(k)
		}
	}
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// exportCSV renders a merged export: subject 19001A passes every threshold,
// 19002A has too few trials.
func exportCSV() string {
	var b strings.Builder
	b.WriteString("SubjectID,Procedure[Trial],TheBlock,Type,TargetSlide.ACC,TargetSlide.RT,TargetSlide.RESP\n")
	write := func(subject, typ string, block, hits, errs int) {
		for i := 0; i < hits; i++ {
			fmt.Fprintf(&b, "%s,TrialProc,%d,%s,1,%d,1\n", subject, block, typ, 400+10*(i%5))
		}
		for i := 0; i < errs; i++ {
			fmt.Fprintf(&b, "%s,TrialProc,%d,%s,0,650,2\n", subject, block, typ)
		}
	}
	b.WriteString("19001A,InitialPause,,,,,\n")
	write("19001A", "AX", 1, 5, 0)
	write("19001A", "AX", 2, 100, 4)
	write("19001A", "BX", 2, 15, 2)
	write("19001A", "AY", 2, 10, 0)
	write("19001A", "BY", 2, 10, 0)
	write("19002A", "AX", 2, 50, 0)
	write("19002A", "BX", 2, 10, 0)
	write("19002A", "AY", 2, 5, 0)
	write("19002A", "BY", 2, 5, 0)
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScoreCommand(t *testing.T) {
	Convey("Given a merged export on disk", t, func() {
		dir := t.TempDir()
		in := writeFile(t, dir, "merged.csv", exportCSV())

		Convey("When scoring to stdout", func() {
			stdout, stderr, err := run("score", "--in", in)

			Convey("Then only the retained subject is written", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(stdout), "\n")
				So(lines, ShouldHaveLength, 2)
				So(lines[0], ShouldStartWith, "vetsaid,axhits,axmisses,axerrors,axnr,")
				So(lines[0], ShouldEndWith, ",ntrials,axhitrate,axmissrate,axfarate,bxhitrate,bxmissrate,bxfarate,ayhitrate,aymissrate,ayfarate,byhitrate,bymissrate,byfarate,dprime")
				So(lines[1], ShouldStartWith, "19001A,100,4,4,0,")
			})

			Convey("Then the run is logged to stderr", func() {
				So(stderr, ShouldContainSubstring, "scored subjects")
				So(stderr, ShouldContainSubstring, "run_id=")
			})
		})

		Convey("When scoring to a file with metadata and metrics", func() {
			f := excelize.NewFile()
			sheet := f.GetSheetName(0)
			So(f.SetSheetRow(sheet, "A1", &[]interface{}{"vetsaid", "ZAXCPT_v2", "CPTCOMPLETE_v2", "SITE_v2"}), ShouldBeNil)
			So(f.SetSheetRow(sheet, "A2", &[]interface{}{"19001A", 0, 0, "UCSD"}), ShouldBeNil)
			meta := filepath.Join(dir, "vetsa.xlsx")
			So(f.SaveAs(meta), ShouldBeNil)
			out := filepath.Join(dir, "out", "axcpt.csv")
			prom := filepath.Join(dir, "axcpt.prom")
			cfg := writeFile(t, dir, "axcpt.yaml", "metadata:\n  columns: [ZAXCPT_v2, CPTCOMPLETE_v2]\n")

			_, _, err := run("score", "--config", cfg, "--in", in, "--out", out, "--meta", meta, "--metrics-file", prom)

			Convey("Then the output carries the configured metadata columns", func() {
				So(err, ShouldBeNil)
				tbl, err := tabular.ReadFile(out)
				So(err, ShouldBeNil)
				So(tbl.Header[len(tbl.Header)-2:], ShouldResemble, []string{"ZAXCPT_v2", "CPTCOMPLETE_v2"})
				So(tbl.Rows[0][len(tbl.Header)-2:], ShouldResemble, []string{"0", "0"})
			})

			Convey("Then the metrics textfile is written", func() {
				data, err := os.ReadFile(prom)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "axcpt_pipeline_trials_read_total")
				So(string(data), ShouldContainSubstring, `axcpt_pipeline_subjects_excluded_total{rule="min_trials"}`)
			})
		})

		Convey("When the config names a column the export lacks", func() {
			cfg := writeFile(t, dir, "axcpt.yaml", "columns:\n  rt: Probe.RT\n")
			_, _, err := run("score", "--config", cfg, "--in", in)

			Convey("Then it fails as a runtime error", func() {
				So(errors.Is(err, tabular.ErrMissingColumn), ShouldBeTrue)
				So(exitCode(err), ShouldEqual, ExitError)
			})
		})

		Convey("When the log level flag is invalid", func() {
			_, _, err := run("score", "--in", in, "--log-level", "loud")

			Convey("Then setup fails before scoring", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the log format flag is invalid", func() {
			_, _, err := run("score", "--in", in, "--log-format", "xml")

			Convey("Then validation rejects it", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})

	Convey("Given no input flag", t, func() {
		_, _, err := run("score")

		Convey("Then the command refuses to run", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "in")
		})
	})
}

func TestReconcileCommand(t *testing.T) {
	Convey("Given a master list, a raw file directory and a merged export", t, func() {
		dir := t.TempDir()
		master := writeFile(t, dir, "master.csv", "vetsaid\n19001A\n19002A\n19003A\n")
		raw := filepath.Join(dir, "raw")
		So(os.Mkdir(raw, 0o755), ShouldBeNil)
		for _, name := range []string{"AXCPT-Left-19001-1.txt", "AXCPT-Right-19002-1.txt", "AXCPT-Left-99999-1.txt", "notes.md"} {
			writeFile(t, raw, name, "")
		}
		merged := writeFile(t, dir, "merged.csv", "SubjectID,Procedure[Trial]\n19001A,TrialProc\n19001A,TrialProc\n")
		missing := filepath.Join(dir, "missing.csv")

		Convey("When reconciling with a pair check", func() {
			stdout, _, err := run("reconcile", "--master", master,
				"--source", "raw="+raw, "--source", "merged="+merged,
				"--pair", "raw,merged", "--missing-out", missing)

			Convey("Then the report lists every discrepancy", func() {
				So(err, ShouldBeNil)
				So(stdout, ShouldContainSubstring, "Duplicates across sources: 1\n  19001A: merged, raw\n")
				So(stdout, ShouldContainSubstring, "Not in master list: 1\n  99999A\n")
				So(stdout, ShouldContainSubstring, "Missing data: 1\n  19003A\n")
				So(stdout, ShouldContainSubstring, "Mismatch raw,merged: 19002A, 99999A\n")
			})

			Convey("Then missing ids are written as CSV", func() {
				data, err := os.ReadFile(missing)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "vetsaid\n19003A\n")
			})
		})

		Convey("When strict mode is on", func() {
			_, _, err := run("reconcile", "--master", master, "--source", "raw="+raw, "--strict")

			Convey("Then discrepancies map to exit status 1", func() {
				var d *DiscrepancyError
				So(errors.As(err, &d), ShouldBeTrue)
				So(exitCode(err), ShouldEqual, ExitDiscrepancy)
			})
		})

		Convey("When a source is malformed", func() {
			_, _, err := run("reconcile", "--master", master, "--source", raw)

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "name=path")
			})
		})

		Convey("When a pair names an unknown source", func() {
			_, _, err := run("reconcile", "--master", master, "--source", "raw="+raw, "--pair", "raw,site2")

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "--pair")
			})
		})
	})
}

func TestQCCommand(t *testing.T) {
	Convey("Given a scored file and a table to join", t, func() {
		dir := t.TempDir()
		in := writeFile(t, dir, "scored.csv",
			"vetsaid,dprime,ZAXCPT_v2,CPTCOMPLETE_v2\n1A,2.1,0,0\n2A,1.9,2,0\n3A,1.5,0,1\n")
		mci := writeFile(t, dir, "mci.csv", "vetsaid,rMCI_cons_v2\n1A,0\n")

		Convey("When running qc with a join", func() {
			stdout, _, err := run("qc", "--in", in, "--join", mci)

			Convey("Then only analysable subjects remain with the joined column", func() {
				So(err, ShouldBeNil)
				So(stdout, ShouldEqual, "vetsaid,dprime,ZAXCPT_v2,CPTCOMPLETE_v2,rMCI_cons_v2\n1A,2.1,0,0,0\n")
			})
		})

		Convey("When building the pupil analysis dataset", func() {
			cog := writeFile(t, dir, "cog.csv", "vetsaid,NUMHINJ_v2,dsfraw_V2\n1A,99,4\n2A,1,9\n3A,2,6\n4A,0,7\n")
			pupil := writeFile(t, dir, "pupil.csv", "vetsaid,load,dilation\n1A,3,0.21\n1A,6,0.35\n2A,3,0.30\n")
			stdout, _, err := run("qc", "--in", in, "--join", cog, "--na", "NUMHINJ_v2=9,99",
				"--quartile", "dsfraw_V2=dsfquantile_V2", "--inner", pupil)

			Convey("Then each pupil observation of an analysable subject is a row", func() {
				So(err, ShouldBeNil)
				So(stdout, ShouldEqual, "vetsaid,dprime,ZAXCPT_v2,CPTCOMPLETE_v2,NUMHINJ_v2,dsfraw_V2,dsfquantile_V2,load,dilation\n"+
					"1A,2.1,0,0,,4,1,3,0.21\n"+
					"1A,2.1,0,0,,4,1,6,0.35\n")
			})
		})

		Convey("When a missing code is malformed", func() {
			_, _, err := run("qc", "--in", in, "--na", "ZAXCPT_v2=nine")

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(exitCode(err), ShouldEqual, ExitError)
			})
		})

		Convey("When the scored file lacks QC columns", func() {
			bare := writeFile(t, dir, "bare.csv", "vetsaid,dprime\n1A,2\n")
			_, _, err := run("qc", "--in", bare)

			Convey("Then it fails", func() {
				So(errors.Is(err, tabular.ErrMissingColumn), ShouldBeTrue)
			})
		})
	})
}

func TestExitCode(t *testing.T) {
	Convey("Given command outcomes", t, func() {
		Convey("Then they map to exit statuses", func() {
			So(exitCode(nil), ShouldEqual, ExitSuccess)
			So(exitCode(errors.New("boom")), ShouldEqual, ExitError)
			So(exitCode(fmt.Errorf("wrapped: %w", &DiscrepancyError{Count: 2})), ShouldEqual, ExitDiscrepancy)
		})
	})
}
