// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import "math"

func float64bits(f float64) uint64 { return math.Float64bits(f) }
func float32bits(f float64) uint64 { return uint64(math.Float32bits(float32(f))) }
