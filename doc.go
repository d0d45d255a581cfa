// Copyright ©2019 The Gonum Authors. All rights reserved.
// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package striate provides the matrix primitives of a softmax classifier
// training step as CUDA-style kernels executed on the CPU.
//
// Kernels are launched with a grid of blocks (Dim3) exactly as on a GPU.
// Blocks run concurrently on the context's workers; the threads of a
// block run phase by phase, which gives reductions the barrier semantics
// of __syncthreads over a fixed-size shared buffer.
//
// Operands are row-major Matrix views with an explicit leading dimension,
// so sub-matrices of a larger allocation need no copy:
//
//	ctx := striate.NewContext(striate.WithRecorder(timer))
//	defer ctx.Destroy()
//
//	mat, _ := striate.FromSlice(2, 3, []float32{1, 2, 3, 4, 5, 6})
//	maxes, _ := ctx.NewDense(2, 1)
//	if err := ctx.RowMax(mat, maxes); err != nil {
//		return err
//	}
//
// The primitive set covers row and column max, argmax and sum reductions,
// broadcast add and divide, ReLU forward and backward, softmax gradient,
// log-loss extraction, transpose and scaled combination. Shape problems
// are reported as ShapeMismatch errors before anything runs; reductions
// past MaxReductionExtent fail with CapacityExceeded.
package striate
