/*
 * Copyright 2025 HouseholdIQ, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package privacy

import (
	"encoding/base64"
	"errors"
	"strings"
)

// TCF v2 core-segment bit offsets. Only the fields the gate consults are
// decoded; everything else is skipped by offset.
const (
	tcfVersionBits = 6

	// Fixed header up to the purposes-consent bitfield.
	tcfPurposesConsentOffset = 152
	tcfPurposesConsentBits   = 24

	// PurposesLITransparency(24) + PurposeOneTreatment(1) + PublisherCC(12)
	// sit between purposes consent and the vendor-consent section.
	tcfVendorSectionOffset = tcfPurposesConsentOffset + tcfPurposesConsentBits + 24 + 1 + 12
)

var errTCFTruncated = errors.New("tcf string truncated")

// TCFData is the aggregator-relevant view of a TCF consent string. Valid is
// false for absent, non-v2, or undecodable strings, in which case the gate
// treats the TCF check as not enforced.
type TCFData struct {
	Valid           bool
	PurposesAllowed map[int]bool

	vendorBitfield []bool
	vendorRanges   []vendorRange
	maxVendorID    int
}

type vendorRange struct {
	start, end int
}

// PurposeAllowed reports whether purpose id (1-based) was consented.
func (d TCFData) PurposeAllowed(id int) bool {
	return d.PurposesAllowed[id]
}

// VendorConsented reports whether vendor id appears in the vendor-consent
// section.
func (d TCFData) VendorConsented(id int) bool {
	if id < 1 || id > d.maxVendorID {
		return false
	}

	if d.vendorBitfield != nil {
		return d.vendorBitfield[id-1]
	}

	for _, r := range d.vendorRanges {
		if id >= r.start && id <= r.end {
			return true
		}
	}

	return false
}

// ParseTCF decodes the core segment of a TCF v2 string. Anything that fails
// to decode, including v1 strings, yields Valid=false rather than an error.
func ParseTCF(tcf string) TCFData {
	data := TCFData{PurposesAllowed: map[int]bool{}}
	if tcf == "" {
		return data
	}

	// Only the core segment matters; disclosed/allowed vendor segments
	// follow after a dot.
	core := tcf
	if idx := strings.IndexByte(core, '.'); idx >= 0 {
		core = core[:idx]
	}

	raw, err := base64.RawURLEncoding.DecodeString(core)
	if err != nil {
		return data
	}

	r := bitReader{buf: raw}

	version, err := r.readInt(0, tcfVersionBits)
	if err != nil || version != 2 {
		return data
	}

	purposes, err := r.readBits(tcfPurposesConsentOffset, tcfPurposesConsentBits)
	if err != nil {
		return data
	}

	for i, set := range purposes {
		if set {
			data.PurposesAllowed[i+1] = true
		}
	}

	if err := parseVendorConsent(&r, &data); err != nil {
		return TCFData{PurposesAllowed: map[int]bool{}}
	}

	data.Valid = true

	return data
}

func parseVendorConsent(r *bitReader, data *TCFData) error {
	offset := tcfVendorSectionOffset

	maxVendor, err := r.readInt(offset, 16)
	if err != nil {
		return err
	}

	offset += 16
	data.maxVendorID = maxVendor

	isRange, err := r.readInt(offset, 1)
	if err != nil {
		return err
	}

	offset++

	if isRange == 0 {
		bits, err := r.readBits(offset, maxVendor)
		if err != nil {
			return err
		}

		data.vendorBitfield = bits

		return nil
	}

	numEntries, err := r.readInt(offset, 12)
	if err != nil {
		return err
	}

	offset += 12

	for i := 0; i < numEntries; i++ {
		entryIsRange, err := r.readInt(offset, 1)
		if err != nil {
			return err
		}

		offset++

		start, err := r.readInt(offset, 16)
		if err != nil {
			return err
		}

		offset += 16
		end := start

		if entryIsRange == 1 {
			end, err = r.readInt(offset, 16)
			if err != nil {
				return err
			}

			offset += 16
		}

		data.vendorRanges = append(data.vendorRanges, vendorRange{start: start, end: end})
	}

	return nil
}

// bitReader reads big-endian bit spans out of a byte slice.
type bitReader struct {
	buf []byte
}

func (r *bitReader) readInt(offset, length int) (int, error) {
	value := 0

	for i := 0; i < length; i++ {
		bit, err := r.bit(offset + i)
		if err != nil {
			return 0, err
		}

		value <<= 1
		if bit {
			value |= 1
		}
	}

	return value, nil
}

func (r *bitReader) readBits(offset, length int) ([]bool, error) {
	bits := make([]bool, length)

	for i := 0; i < length; i++ {
		bit, err := r.bit(offset + i)
		if err != nil {
			return nil, err
		}

		bits[i] = bit
	}

	return bits, nil
}

func (r *bitReader) bit(pos int) (bool, error) {
	byteIdx := pos / 8
	if byteIdx >= len(r.buf) {
		return false, errTCFTruncated
	}

	mask := byte(1) << (7 - uint(pos%8))

	return r.buf[byteIdx]&mask != 0, nil
}
