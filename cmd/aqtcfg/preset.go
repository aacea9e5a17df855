package main

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samcharles93/aqt/internal/api"
	"github.com/samcharles93/aqt/internal/logger"
	"github.com/urfave/cli/v3"
)

func presetCmd() *cli.Command {
	return &cli.Command{
		Name:  "preset",
		Usage: "Derive configs from a named preset",
		Commands: []*cli.Command{
			fullyQuantizedCmd(),
			perPassCmd(),
		},
	}
}

func fullyQuantizedCmd() *cli.Command {
	return &cli.Command{
		Name:  "fully-quantized",
		Usage: "Quantize the forward pass and both gradients",
		Flags: []cli.Flag{
			bitsFlag("fwd-bits", "8", "bit width of both forward operands"),
			bitsFlag("bwd-bits", "8", "bit width of both gradient contractions"),
			&cli.BoolFlag{
				Name:  "use-fwd-quant",
				Usage: "reuse forward-quantized operands in the gradient contractions",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "stochastic-rounding",
				Usage: "add uniform noise before rounding in the gradient contractions",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "dummy-static-bound",
				Usage: "pin a static bound of 1.0 (benchmarking only)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			fileCfg := configFromContext(ctx)

			fwd := cmd.String("fwd-bits")
			if fileCfg.FwdBits != nil && !cmd.IsSet("fwd-bits") {
				fwd = strconv.Itoa(*fileCfg.FwdBits)
			}
			bwd := cmd.String("bwd-bits")
			if fileCfg.BwdBits != nil && !cmd.IsSet("bwd-bits") {
				bwd = strconv.Itoa(*fileCfg.BwdBits)
			}

			var (
				req api.FullyQuantizedRequest
				err error
			)
			if req.FwdBits, err = parseBits("fwd-bits", fwd); err != nil {
				return err
			}
			if req.BwdBits, err = parseBits("bwd-bits", bwd); err != nil {
				return err
			}
			if req.FwdBits == nil || req.BwdBits == nil {
				return errors.New("fully-quantized: --fwd-bits and --bwd-bits are required")
			}
			req.UseFwdQuant = boolSetting(cmd, "use-fwd-quant", fileCfg.UseFwdQuant)
			req.UseStochasticRounding = boolSetting(cmd, "stochastic-rounding", fileCfg.UseStochasticRounding)
			req.UseDummyStaticBound = cmd.Bool("dummy-static-bound")
			if req.UseDummyStaticBound {
				log.Warn("dummy static bound is for benchmarking only")
			}

			cfg, err := api.BuildFullyQuantized(req)
			if err != nil {
				return errors.Wrap(err, "fully-quantized")
			}
			return render(stdout, outputFormat, cfg)
		},
	}
}

func perPassCmd() *cli.Command {
	return &cli.Command{
		Name:  "per-pass",
		Usage: "Quantize each contraction with its own bit width",
		Flags: []cli.Flag{
			bitsFlag("fwd-bits", "8", "bit width of both forward operands"),
			bitsFlag("dlhs-bits", "8", "bit width of the lhs gradient contraction"),
			bitsFlag("drhs-bits", "8", "bit width of the rhs gradient contraction"),
			&cli.StringFlag{Name: "rng", Usage: `noise source for gradient lhs operands ("none", "custom-1")`, Value: "none"},
			&cli.Int64Flag{Name: "dlhs-local-aqt", Usage: "contraction axis shards of the lhs gradient"},
			&cli.Int64Flag{Name: "drhs-local-aqt", Usage: "contraction axis shards of the rhs gradient"},
			&cli.StringFlag{Name: "fwd-accumulator", Usage: "accumulator dtype override of the forward contraction"},
			&cli.StringFlag{Name: "dlhs-accumulator", Usage: "accumulator dtype override of the lhs gradient"},
			&cli.StringFlag{Name: "drhs-accumulator", Usage: "accumulator dtype override of the rhs gradient"},
			&cli.BoolFlag{Name: "use-fwd-quant", Usage: "reuse forward-quantized operands in the gradient contractions"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var (
				req api.PerPassRequest
				err error
			)
			if req.FwdBits, err = bitsFromFlag(cmd, "fwd-bits"); err != nil {
				return err
			}
			if req.DLHSBits, err = bitsFromFlag(cmd, "dlhs-bits"); err != nil {
				return err
			}
			if req.DRHSBits, err = bitsFromFlag(cmd, "drhs-bits"); err != nil {
				return err
			}
			req.RNG = cmd.String("rng")
			req.DLHSLocalAqtShards = optionalInt(cmd, "dlhs-local-aqt")
			req.DRHSLocalAqtShards = optionalInt(cmd, "drhs-local-aqt")
			req.FwdAccumulatorDType = cmd.String("fwd-accumulator")
			req.DLHSAccumulatorDType = cmd.String("dlhs-accumulator")
			req.DRHSAccumulatorDType = cmd.String("drhs-accumulator")
			req.UseFwdQuant = cmd.Bool("use-fwd-quant")

			cfg, err := api.BuildPerPass(req)
			if err != nil {
				return errors.Wrap(err, "per-pass")
			}
			logger.FromContext(ctx).Debug("derived per-pass config", "rng", req.RNG)
			return render(stdout, outputFormat, cfg)
		},
	}
}

// boolSetting resolves a flag against an optional config file value.
func boolSetting(cmd *cli.Command, name string, fromFile *bool) *bool {
	if v := optionalBool(cmd, name); v != nil {
		return v
	}
	if fromFile != nil {
		return fromFile
	}
	v := cmd.Bool(name)
	return &v
}
