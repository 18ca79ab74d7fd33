package roster_test

import (
	"testing"

	"github.com/okian/axcpt/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSubjectFromFilename(t *testing.T) {
	Convey("Given raw export file names", t, func() {
		Convey("Then the twin suffix maps to A or B", func() {
			So(roster.SubjectFromFilename("AXCPT-Left-19001-1.txt"), ShouldEqual, "19001A")
			So(roster.SubjectFromFilename("AX-CPT-Right-19001-2.txt"), ShouldEqual, "19001B")
		})

		Convey("Then directories are ignored", func() {
			So(roster.SubjectFromFilename("/data/AX CPT 103/AXCPT-Left-20455-2.txt"), ShouldEqual, "20455B")
		})

		Convey("Then ids without a twin suffix pass through", func() {
			So(roster.SubjectFromFilename("AXCPT-Left-practice.txt"), ShouldEqual, "practice")
		})
	})
}

func TestReconcile(t *testing.T) {
	Convey("Given a master list and two computers", t, func() {
		master := []string{"1A", "1B", "2A", "3A"}
		sources := []roster.Source{
			{Name: "103", IDs: []string{"1A", "2A", "9Z"}},
			{Name: "104", IDs: []string{"1B", "2A", "2A"}},
		}

		Convey("When reconciling", func() {
			rep := roster.Reconcile(master, sources)

			Convey("Then ids on both computers are duplicates", func() {
				So(rep.Duplicates, ShouldHaveLength, 1)
				So(rep.Duplicates["2A"], ShouldResemble, []string{"103", "104"})
			})

			Convey("Then unknown ids are practice subjects", func() {
				So(rep.NotInMaster, ShouldResemble, []string{"9Z"})
			})

			Convey("Then master ids without data are missing", func() {
				So(rep.Missing, ShouldResemble, []string{"3A"})
				So(rep.Clean(), ShouldBeFalse)
			})
		})
	})

	Convey("Given sources that match the master list exactly", t, func() {
		rep := roster.Reconcile([]string{"1A", "1B"}, []roster.Source{{Name: "uc", IDs: []string{"1A", " 1B "}}})

		Convey("Then the report is clean", func() {
			So(rep.Clean(), ShouldBeTrue)
		})
	})
}

func TestSymmetricDiff(t *testing.T) {
	Convey("Given file-name ids and merged-export ids", t, func() {
		diff := roster.SymmetricDiff([]string{"1A", "2A", "3A"}, []string{"2A", "3A", "4A"})

		Convey("Then ids on one side only are reported", func() {
			So(diff, ShouldResemble, []string{"1A", "4A"})
		})

		Convey("Then identical lists have no difference", func() {
			So(roster.SymmetricDiff([]string{"1A"}, []string{"1A"}), ShouldBeEmpty)
		})
	})
}
