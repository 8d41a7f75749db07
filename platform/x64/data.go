package x64

import (
	"github.com/pattyshack/wren/architecture"
	"github.com/pattyshack/wren/platform"
)

// 0xcccccccc, sign-extended.  Replaced by the string's address at
// resolution.
const stringAddressPlaceholder = int32(-0x33333334)

func (Backend) LoadString(
	ctx *platform.Context,
	dest *architecture.Register,
	text string,
) {
	instruction := movImmediateInstruction(dest, stringAddressPlaceholder)
	start := emit(ctx, instruction, "mov %s, %q", dest, text)
	from := start + architecture.Offset(len(instruction)-4)

	if text == "" {
		ctx.Relocations.Add(platform.Relocation{
			Kind: platform.EmptyStringRelocation,
			From: from,
			To:   ctx.EmptyString(),
			Size: 0,
		})
		return
	}

	to := ctx.AddData([]byte(text)...)
	ctx.Data.AppendByte(0)

	ctx.Relocations.Add(platform.Relocation{
		Kind: platform.DataRelocation,
		From: from,
		To:   to,
		Size: len(text) + 1,
	})
}
