package cmd

import (
	"io"

	au "github.com/logrusorgru/aurora"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/atomic"
)

//ProgressBar counts processed datasets
type ProgressBar interface {
	Increment(success bool)
	Wait()
}

type DummyProgressBar struct{}

func (d *DummyProgressBar) Increment(success bool) {}

func (d *DummyProgressBar) Wait() {}

type MultiProgressBar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	failed   *atomic.Bool
}

//newProgressBar returns a bar counting total datasets of the operation or a dummy one if disabled
func newProgressBar(operation string, total int, disabled bool) ProgressBar {
	if disabled {
		return &DummyProgressBar{}
	}

	mp := &MultiProgressBar{progress: mpb.New(), failed: atomic.NewBool(false)}
	mp.bar = mp.progress.Add(int64(total),
		nil,
		mpb.BarExtender(
			newLineBarFiller(
				mpb.NewBarFiller(
					mpb.BarStyle().Lbound("╢").
						Filler(au.Index(93, "█").String()).Tip("").
						Padding(au.Index(99, "░").String()).Rbound("╟")))),
		mpb.PrependDecorators(
			decor.Name(operation),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("%d / %d datasets", decor.WCSyncWidth),
			decor.Any(func(st decor.Statistics) string {
				if !st.Completed {
					return ""
				}
				return resultMessage(!mp.failed.Load())
			}, decor.WCSyncSpace),
		),
	)
	return mp
}

//Increment marks one dataset as processed. One failure marks the whole bar as failed
func (mp *MultiProgressBar) Increment(success bool) {
	if !success {
		mp.failed.Store(true)
	}
	mp.bar.Increment()
}

func (mp *MultiProgressBar) Wait() {
	mp.progress.Wait()
}

func newLineBarFiller(filler mpb.BarFiller) mpb.BarFiller {
	return mpb.BarFillerFunc(func(w io.Writer, reqWidth int, st decor.Statistics) {
		if !st.Completed {
			filler.Fill(w, reqWidth, st)
			w.Write([]byte("\n"))
		}
	})
}

func resultMessage(success bool) string {
	if success {
		return au.Green("✓ done").String()
	}

	return au.Red("! error").String()
}
