package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/courtside/strokelab/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	Convey("Given a bounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When recording new ids", func() {
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)

			Convey("Then repeats are reported as seen", func() {
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When exceeding the cap", func() {
			for _, id := range []string{"a", "b", "c", "d"} {
				So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("Then the oldest id is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse) // evicted, so new again
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
			})
		})

		Convey("When hammered with many ids", func() {
			big := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(100))
			for i := 0; i < 1000; i++ {
				big.SeenAndRecord(ctx, fmt.Sprintf("frame-%d", i))
			}

			Convey("Then size never exceeds the cap", func() {
				So(big.Size(), ShouldEqual, 100)
			})
		})
	})
}
