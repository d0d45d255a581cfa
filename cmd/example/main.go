// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command example trains a one-hidden-layer softmax classifier on a
// synthetic clustered dataset. Every step runs on striate kernels:
// forward pass, log loss, accuracy, gradients and the SGD update.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/striate"
)

var (
	flagSamples  = flag.Int("samples", 1024, "Number of training samples")
	flagFeatures = flag.Int("features", 16, "Number of input features")
	flagHidden   = flag.Int("hidden", 32, "Width of the hidden ReLU layer")
	flagClasses  = flag.Int("classes", 4, "Number of classes")
	flagSteps    = flag.Int("steps", 200, "Number of full-batch training steps")
	flagLR       = flag.Float64("lr", 0.5, "Learning rate")
	flagSeed     = flag.Int64("seed", 42, "Random seed for data and weights")
	flagWorkers  = flag.Int("workers", 0, "Worker goroutines, 0 for one per CPU")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	timer := striate.NewTimer()
	ctx := striate.NewContext(striate.WithWorkers(*flagWorkers), striate.WithRecorder(timer))
	defer ctx.Destroy()

	rng := rand.New(rand.NewSource(*flagSeed))
	ds := newDataset(ctx, rng, *flagSamples, *flagFeatures, *flagClasses)
	m := newModel(ctx, rng, *flagFeatures, *flagHidden, *flagClasses, *flagSamples)
	klog.Infof("training on %s samples, %d features, %d classes",
		humanize.Comma(int64(*flagSamples)), *flagFeatures, *flagClasses)

	bar := progressbar.NewOptions(*flagSteps,
		progressbar.OptionSetDescription("training"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("steps"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
	)
	var loss, accuracy float32
	for step := 0; step < *flagSteps; step++ {
		var err error
		if loss, accuracy, err = m.step(ds, float32(*flagLR)); err != nil {
			klog.Fatalf("step %d: %+v", step, err)
		}
		bar.Describe(fmt.Sprintf("loss=%.4f acc=%.3f", loss, accuracy))
		must.M(bar.Add(1))
	}
	must.M(bar.Finish())
	fmt.Println()

	klog.Infof("final loss %.4f, accuracy %.2f%%", loss, 100*accuracy)
	allocated, peak := ctx.Memory().GetStats()
	klog.Infof("memory pool: %s in use, %s peak",
		humanize.Bytes(uint64(allocated)), humanize.Bytes(uint64(peak)))
	timer.LogReport()

	must.M(m.release())
	must.M(ds.release())
}

// dataset holds samples on columns: x is features×samples.
type dataset struct {
	ctx    *striate.Context
	x      striate.Dense
	labels striate.IndexVector
}

// newDataset draws one Gaussian cluster per class.
func newDataset(ctx *striate.Context, rng *rand.Rand, samples, features, classes int) *dataset {
	centers := make([][]float32, classes)
	for c := range centers {
		centers[c] = make([]float32, features)
		for f := range centers[c] {
			centers[c][f] = float32(rng.NormFloat64() * 2)
		}
	}
	ds := &dataset{
		ctx:    ctx,
		x:      must.M1(ctx.NewDense(features, samples)),
		labels: must.M1(ctx.NewIndices(1, samples)),
	}
	for j := 0; j < samples; j++ {
		c := rng.Intn(classes)
		ds.labels.SetElem(j, int32(c))
		for f := 0; f < features; f++ {
			ds.x.Set(f, j, centers[c][f]+float32(rng.NormFloat64()))
		}
	}
	return ds
}

func (ds *dataset) release() error {
	if err := striate.Release(ds.ctx, ds.x); err != nil {
		return err
	}
	return striate.Release(ds.ctx, ds.labels)
}

// model is relu(w1·x + b1) followed by softmax(w2·h + b2), with every
// activation and gradient buffer allocated once.
type model struct {
	ctx *striate.Context

	w1, b1, w2, b2 striate.Dense

	hidden, probs, colMax, colSum, cost, total striate.Dense
	predicted                                  striate.IndexVector

	gradProbs, gradHidden, w2T     striate.Dense
	gradW1, gradB1, gradW2, gradB2 striate.Dense
}

func newModel(ctx *striate.Context, rng *rand.Rand, features, hidden, classes, samples int) *model {
	alloc := func(rows, cols int) striate.Dense { return must.M1(ctx.NewDense(rows, cols)) }
	m := &model{
		ctx: ctx,
		w1:  alloc(hidden, features),
		b1:  alloc(hidden, 1),
		w2:  alloc(classes, hidden),
		b2:  alloc(classes, 1),

		hidden:    alloc(hidden, samples),
		probs:     alloc(classes, samples),
		colMax:    alloc(1, samples),
		colSum:    alloc(1, samples),
		cost:      alloc(1, samples),
		total:     alloc(1, 1),
		predicted: must.M1(ctx.NewIndices(1, samples)),

		gradProbs:  alloc(classes, samples),
		gradHidden: alloc(hidden, samples),
		gradW1:     alloc(hidden, features),
		gradB1:     alloc(hidden, 1),
		gradW2:     alloc(classes, hidden),
		gradB2:     alloc(classes, 1),
	}
	m.w2T = alloc(hidden, classes)
	initWeights(rng, m.w1)
	initWeights(rng, m.w2)
	return m
}

// initWeights fills w with He-scaled Gaussian values.
func initWeights(rng *rand.Rand, w striate.Dense) {
	scale := math.Sqrt(2 / float64(w.Cols))
	for i := 0; i < w.Rows; i++ {
		for j := 0; j < w.Cols; j++ {
			w.Set(i, j, float32(rng.NormFloat64()*scale))
		}
	}
}

// step runs one full-batch forward and backward pass and applies the SGD
// update. It returns the mean loss and the accuracy before the update.
func (m *model) step(ds *dataset, lr float32) (loss, accuracy float32, err error) {
	ctx := m.ctx
	samples := ds.x.Cols

	// Forward.
	if err = ctx.Dot(m.w1, ds.x, m.hidden, false, false, 1, 0); err != nil {
		return
	}
	if err = ctx.AddVecToRows(m.hidden, m.b1, m.hidden, 1, 1); err != nil {
		return
	}
	if err = ctx.ReluForward(m.hidden, m.hidden); err != nil {
		return
	}
	if err = ctx.Dot(m.w2, m.hidden, m.probs, false, false, 1, 0); err != nil {
		return
	}
	if err = ctx.AddVecToRows(m.probs, m.b2, m.probs, 1, 1); err != nil {
		return
	}
	if err = m.softmax(); err != nil {
		return
	}

	// Loss and accuracy.
	if err = ctx.LogLossCols(m.probs, ds.labels, m.cost); err != nil {
		return
	}
	if err = ctx.RowSum(m.cost, m.total, 0, 1/float32(samples)); err != nil {
		return
	}
	loss = m.total.At(0, 0)
	if err = ctx.ColArgmax(m.probs, m.predicted); err != nil {
		return
	}
	var correct int
	if correct, err = striate.SameCount(ctx, m.predicted, ds.labels); err != nil {
		return
	}
	accuracy = float32(correct) / float32(samples)

	// Backward. SoftmaxGrad yields the negative gradient of the loss with
	// respect to the logits, so the update adds it.
	if err = ctx.SoftmaxGrad(m.probs, ds.labels, m.gradProbs); err != nil {
		return
	}
	if err = ctx.Dot(m.gradProbs, m.hidden, m.gradW2, false, true, 1, 0); err != nil {
		return
	}
	if err = ctx.RowSum(m.gradProbs, m.gradB2, 0, 1); err != nil {
		return
	}
	if err = ctx.Transpose(m.w2, m.w2T); err != nil {
		return
	}
	if err = ctx.Dot(m.w2T, m.gradProbs, m.gradHidden, false, false, 1, 0); err != nil {
		return
	}
	if err = ctx.ReluBackward(m.gradHidden, m.hidden, m.gradHidden); err != nil {
		return
	}
	if err = ctx.Dot(m.gradHidden, ds.x, m.gradW1, false, true, 1, 0); err != nil {
		return
	}
	if err = ctx.RowSum(m.gradHidden, m.gradB1, 0, 1); err != nil {
		return
	}

	rate := lr / float32(samples)
	for _, p := range []struct{ w, g striate.Dense }{
		{m.w1, m.gradW1}, {m.b1, m.gradB1}, {m.w2, m.gradW2}, {m.b2, m.gradB2},
	} {
		if err = ctx.Combine(p.w, p.g, p.w, 1, rate); err != nil {
			return
		}
	}
	return
}

// softmax normalizes each column of m.probs in place, subtracting the
// column maximum before exponentiating.
func (m *model) softmax() error {
	ctx := m.ctx
	if err := ctx.ColMax(m.probs, m.colMax); err != nil {
		return err
	}
	if err := ctx.AddVecToCols(m.probs, m.colMax, m.probs, -1, 1); err != nil {
		return err
	}
	exp := func(v float32) float32 { return float32(math.Exp(float64(v))) }
	if err := ctx.Apply(m.probs, m.probs, exp); err != nil {
		return err
	}
	if err := ctx.ColSum(m.probs, m.colSum, 0, 1); err != nil {
		return err
	}
	return ctx.DivVecToCols(m.probs, m.colSum, m.probs)
}

func (m *model) release() error {
	for _, d := range []striate.Dense{
		m.w1, m.b1, m.w2, m.b2,
		m.hidden, m.probs, m.colMax, m.colSum, m.cost, m.total,
		m.gradProbs, m.gradHidden, m.w2T,
		m.gradW1, m.gradB1, m.gradW2, m.gradB2,
	} {
		if err := striate.Release(m.ctx, d); err != nil {
			return err
		}
	}
	return striate.Release(m.ctx, m.predicted)
}
