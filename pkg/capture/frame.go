// Package capture records encoded network records to append-only files and
// reads them back for inspection.
package capture

import (
	"hash/crc32"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
)

var headerCodec, headerCodecErr = newHeaderCodec()

func newHeaderCodec() (codec.Typed[frameHeader], error) {
	b := codec.NewBuilder()
	if err := codec.RegisterType[frameHeader](b, codec.Named("capture_frame")); err != nil {
		return codec.Typed[frameHeader]{}, err
	}
	reg, err := b.Build()
	if err != nil {
		return codec.Typed[frameHeader]{}, err
	}
	return codec.Resolve[frameHeader](reg)
}

func checksum(name, payload []byte) uint32 {
	crc := crc32.ChecksumIEEE(name)
	return crc32.Update(crc, crc32.IEEETable, payload)
}
