package aggregate_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/okian/axcpt/internal/domain/aggregate"
	"github.com/okian/axcpt/internal/domain/model"
	"github.com/okian/axcpt/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func tr(subject string, typ model.TrialType, acc int, rt float64) model.Trial {
	t := model.Trial{SubjectID: subject, Type: typ, Block: 2, Accuracy: acc}
	if acc == 1 {
		t.RT = model.Float(rt)
		t.Response = model.Str("1")
	}
	return t
}

func sampleTrials() []model.Trial {
	return []model.Trial{
		tr("b", model.TypeAX, 1, 400),
		tr("b", model.TypeAX, 1, 600),
		tr("b", model.TypeBX, 0, 0),
		tr("a", model.TypeAX, 1, 500),
		tr("a", model.TypeAX, 1, 520),
		tr("a", model.TypeAX, 0, 0),
		tr("a", model.TypeBX, 1, 610),
		tr("a", model.TypeBY, 1, 450),
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	Convey("Given trials for two subjects", t, func() {
		tbl := aggregate.New().Aggregate(sampleTrials())

		Convey("Then there is one row per subject sorted by id", func() {
			So(tbl.Rows, ShouldHaveLength, 2)
			So(tbl.Rows[0].SubjectID, ShouldEqual, "a")
			So(tbl.Rows[1].SubjectID, ShouldEqual, "b")
		})

		Convey("Then columns are trial-type blocks in protocol order followed by ntrials", func() {
			So(tbl.Columns[0], ShouldEqual, "axhits")
			So(tbl.Columns[len(scoring.Metrics)], ShouldEqual, "bxhits")
			So(tbl.Columns[2*len(scoring.Metrics)], ShouldEqual, "byhits")
			So(tbl.Columns[len(tbl.Columns)-1], ShouldEqual, aggregate.ColumnTrials)
			So(tbl.HasColumn("ayhits"), ShouldBeFalse)
		})

		Convey("Then metrics land in the prefixed columns", func() {
			a := tbl.Rows[0]
			So(a.Get("axhits"), ShouldEqual, 2)
			So(a.Get("axnr"), ShouldEqual, 1)
			So(a.Get("axmisses"), ShouldEqual, 1)
			So(a.Get("axmeanrt"), ShouldEqual, 510)
			So(a.Get("bxmeanrt"), ShouldEqual, 610)
			So(a.Get(aggregate.ColumnTrials), ShouldEqual, 5)
		})

		Convey("Then a trial type the subject never saw is NaN", func() {
			b := tbl.Rows[1]
			So(math.IsNaN(b.Get("byhits")), ShouldBeTrue)
			So(math.IsNaN(b.Get("bymisses")), ShouldBeTrue)
			So(b.Get("bxnr"), ShouldEqual, 1)
			So(b.Get(aggregate.ColumnTrials), ShouldEqual, 3)
		})
	})

	Convey("Given an unknown trial type in the data", t, func() {
		trials := append(sampleTrials(), tr("a", model.TrialType("CX"), 1, 500))

		Convey("When aggregating", func() {
			tbl := aggregate.New().Aggregate(trials)

			Convey("Then its block follows the listed types", func() {
				So(tbl.Columns[len(tbl.Columns)-1-len(scoring.Metrics)], ShouldEqual, "cxhits")
			})
		})
	})

	Convey("Given no trials", t, func() {
		tbl := aggregate.New().Aggregate(nil)

		Convey("Then the table has no rows and only the trial count column", func() {
			So(tbl.Rows, ShouldBeEmpty)
			So(tbl.Columns, ShouldResemble, []string{aggregate.ColumnTrials})
		})
	})
}

func TestUnflatten(t *testing.T) {
	Convey("Given an aggregated table", t, func() {
		trials := sampleTrials()
		tbl := aggregate.New().Aggregate(trials)

		Convey("When reversing the column flattening", func() {
			got := aggregate.Unflatten(tbl)

			Convey("Then the per-trial-type scores are recovered", func() {
				scorer := scoring.NewScorer()
				want := map[string]map[model.TrialType]scoring.Scores{
					"a": {
						model.TypeAX: scorer.Score(trials[3:6]),
						model.TypeBX: scorer.Score(trials[6:7]),
						model.TypeBY: scorer.Score(trials[7:8]),
					},
					"b": {
						model.TypeAX: scorer.Score(trials[0:2]),
						model.TypeBX: scorer.Score(trials[2:3]),
					},
				}
				So(cmp.Diff(want, got, cmpopts.EquateNaNs()), ShouldBeEmpty)
			})
		})
	})
}

func TestColumn(t *testing.T) {
	Convey("Given a trial type and metric", t, func() {
		Convey("Then the column is their lowercased concatenation", func() {
			So(aggregate.Column(model.TypeBX, scoring.MetricMeanRT), ShouldEqual, "bxmeanrt")
			So(aggregate.Column(model.TypeAY, scoring.MetricTrimMeanRT), ShouldEqual, "aytrim_meanrt")
		})
	})
}

func TestTypes(t *testing.T) {
	Convey("Given an aggregated table", t, func() {
		tbl := aggregate.New().Aggregate(sampleTrials())

		Convey("Then its trial types are listed in column order", func() {
			So(aggregate.Types(tbl), ShouldResemble, []model.TrialType{model.TypeAX, model.TypeBX, model.TypeBY})
		})
	})
}
