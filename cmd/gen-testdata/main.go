// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/bpowers/mii"
	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/internal/engine"
)

var (
	nRecords = flag.Int("n", 10000, "records to generate")
	seed     = flag.Uint64("seed", 0, "seed (0 picks one at random)")
)

func newSeed() uint64 {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(seedBytes[:])
}

// gen-testdata prints random canonical records, one
// "fingerprint:base64" pair per line.
func main() {
	flag.Parse()
	s := *seed
	if s == 0 {
		s = newSeed()
	}
	e := engine.New(engine.WithSeed(s))

	for i := 0; i < *nRecords; i++ {
		buf, err := e.RandomCharInfo(charinfo.GenderAll, charinfo.AgeAll, charinfo.RaceAll)
		if err != nil {
			panic(err)
		}
		ci, err := charinfo.ParseCharInfo(buf)
		if err != nil {
			panic(err)
		}
		fp, err := mii.Fingerprint(ci)
		if err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(os.Stdout, "%016x:%s\n", fp, charinfo.EncodeBytes(buf)); err != nil {
			panic(err)
		}
	}
}
