//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package overlap

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
)

const intervalSize = 8

// encodeIntervals packs intervals as little-endian (begin,end) uint32 pairs in a snappy block.
func encodeIntervals(ivs []Interval) []byte {
	raw := make([]byte, len(ivs)*intervalSize)
	for i, iv := range ivs {
		binary.LittleEndian.PutUint32(raw[i*intervalSize:], iv.Begin)
		binary.LittleEndian.PutUint32(raw[i*intervalSize+4:], iv.End)
	}
	return snappy.Encode(nil, raw)
}

func decodeIntervals(block []byte, ivs []Interval) ([]Interval, error) {
	if len(block) == 0 {
		return ivs, nil
	}
	raw, err := snappy.Decode(nil, block)
	if err != nil {
		return ivs, err
	}
	if len(raw)%intervalSize != 0 {
		return ivs, fmt.Errorf("Interval block of %d bytes is truncated", len(raw))
	}
	for i := 0; i < len(raw); i += intervalSize {
		ivs = append(ivs, Interval{Begin: binary.LittleEndian.Uint32(raw[i:]), End: binary.LittleEndian.Uint32(raw[i+4:])})
	}
	return ivs, nil
}
