package compiler

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
)

// Options tunes DecodeMetadataWithOptions. The zero value is the
// sequential pipeline.
type Options struct {
	// Parallelism bounds the number of pallets projected at once.
	// Values below 2 project sequentially.
	Parallelism int
}

// DecodeMetadata decodes raw version 14 metadata and normalizes it.
//
// It returns the complete document or the first error; partial output is
// never returned.
func DecodeMetadata(raw []byte) (*ir.Metadata, error) {
	return DecodeMetadataWithOptions(raw, Options{})
}

// DecodeMetadataWithOptions is DecodeMetadata with tuning options. The
// result, including which error is reported, does not depend on opts.
func DecodeMetadataWithOptions(raw []byte, opts Options) (*ir.Metadata, error) {
	start := time.Now()

	md, err := frame.Decode(raw)
	if err != nil {
		return nil, err
	}

	out, err := Assemble(md, opts)
	if err != nil {
		return nil, err
	}

	slog.Debug("metadata normalized",
		"bytes", len(raw),
		"types", len(out.Types),
		"pallets", len(out.Pallets),
		"extensions", len(out.Signing.Extensions),
		"duration", time.Since(start),
	)
	return out, nil
}

// Assemble normalizes an already decoded metadata tree.
func Assemble(md *frame.RuntimeMetadataV14, opts Options) (*ir.Metadata, error) {
	reg, err := frame.NewRegistry(md.Types)
	if err != nil {
		return nil, err
	}
	if err := reg.MustExist(md.Extrinsic.Type, "extrinsic"); err != nil {
		return nil, err
	}
	if err := reg.MustExist(md.Runtime, "runtime"); err != nil {
		return nil, err
	}

	types, err := normalizeAll(reg)
	if err != nil {
		return nil, err
	}

	pallets, err := projectPallets(md.Pallets, reg, opts.Parallelism)
	if err != nil {
		return nil, err
	}

	signing, err := FilterSignedExtensions(md.Extrinsic, reg)
	if err != nil {
		return nil, err
	}

	return &ir.Metadata{
		Pallets: pallets,
		Types:   types,
		Signing: signing,
	}, nil
}

// normalizeAll builds the full type index in registry order.
func normalizeAll(reg *frame.Registry) (ir.Types, error) {
	n := newNormalizer(reg)
	types := make(ir.Types, reg.Len())
	for _, id := range reg.IDs() {
		st, err := n.normalize(id, nil)
		if err != nil {
			return nil, fmt.Errorf("normalize type %d: %w", id, err)
		}
		types[id] = st
	}
	return types, nil
}

// projectPallets projects every pallet. With parallelism > 1 the pallets
// run concurrently, but every pallet still runs and the reported error is
// the one from the earliest pallet in declaration order.
func projectPallets(raw []frame.PalletMetadata, reg *frame.Registry, parallelism int) ([]ir.Pallet, error) {
	pallets := make([]ir.Pallet, len(raw))
	errs := make([]error, len(raw))

	if parallelism < 2 {
		for i, p := range raw {
			if pallets[i], errs[i] = ProjectPallet(p, reg); errs[i] != nil {
				break
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(parallelism)
		for i, p := range raw {
			g.Go(func() error {
				pallets[i], errs[i] = ProjectPallet(p, reg)
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("pallet %s: %w", raw[i].Name, err)
		}
	}
	return pallets, nil
}
