package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samcharles93/aqt/internal/api"
	"github.com/samcharles93/aqt/internal/logger"
	"github.com/urfave/cli/v3"
)

func deriveCmd() *cli.Command {
	return &cli.Command{
		Name:  "derive",
		Usage: "Derive forward and gradient configs from per-operand bit widths",
		Flags: []cli.Flag{
			bitsFlag("lhs-bits", "", "forward lhs bit width"),
			bitsFlag("rhs-bits", "", "forward rhs bit width"),
			bitsFlag("bwd-bits", "", "bit width of both gradient contractions"),
			&cli.BoolFlag{
				Name:  "use-fwd-quant",
				Usage: "reuse forward-quantized operands in the gradient contractions",
				Value: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			var (
				req api.DotGeneralRequest
				err error
			)
			if req.LHSBits, err = bitsFromFlag(cmd, "lhs-bits"); err != nil {
				return err
			}
			if req.RHSBits, err = bitsFromFlag(cmd, "rhs-bits"); err != nil {
				return err
			}
			if req.BwdBits, err = bitsFromFlag(cmd, "bwd-bits"); err != nil {
				return err
			}
			useFwdQuant := cmd.Bool("use-fwd-quant")
			req.UseFwdQuant = &useFwdQuant

			cfg, err := api.BuildDotGeneral(req)
			if err != nil {
				return errors.Wrap(err, "derive")
			}
			log.Debug("derived dot_general", "lhs_bits", cmd.String("lhs-bits"), "rhs_bits", cmd.String("rhs-bits"), "bwd_bits", cmd.String("bwd-bits"))
			return render(stdout, outputFormat, cfg)
		},
	}
}

func rawCmd() *cli.Command {
	return &cli.Command{
		Name:  "raw",
		Usage: "Derive a single contraction config (no gradients)",
		Flags: []cli.Flag{
			bitsFlag("lhs-bits", "", "lhs bit width"),
			bitsFlag("rhs-bits", "", "rhs bit width"),
			&cli.Int64Flag{
				Name:  "conv-spatial-dims",
				Usage: "derive the convolution variant with this many spatial dimensions",
			},
			&cli.Int64Flag{
				Name:  "local-aqt-shards",
				Usage: "quantize the contraction axis in this many independent shards",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			var (
				req api.DotGeneralRawRequest
				err error
			)
			if req.LHSBits, err = bitsFromFlag(cmd, "lhs-bits"); err != nil {
				return err
			}
			if req.RHSBits, err = bitsFromFlag(cmd, "rhs-bits"); err != nil {
				return err
			}
			req.ConvSpatialDims = optionalInt(cmd, "conv-spatial-dims")
			req.LocalAqtShards = optionalInt(cmd, "local-aqt-shards")

			cfg, err := api.BuildDotGeneralRaw(req)
			if err != nil {
				return errors.Wrap(err, "raw")
			}
			log.Debug("derived dot_general_raw", "conv", req.ConvSpatialDims != nil)
			return render(stdout, outputFormat, cfg)
		},
	}
}
