package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r3d91ll/spectra/pkg/api"
	"github.com/r3d91ll/spectra/pkg/results"
)

func newRenderCmd() *cobra.Command {
	var (
		params ChartFlags
		png    bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "render [file.csv|file.xlsx]",
		Short: "Render a result file to SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := params.ChartParams()
			if err != nil {
				return err
			}

			tbl, raw, err := loadTable(args[0])
			if err != nil {
				return err
			}
			res := results.NewRegistry().Add(filepath.Base(args[0]), tbl, raw)

			format := api.FormatSVG
			if png || strings.EqualFold(filepath.Ext(output), ".png") {
				format = api.FormatPNG
			}
			body, err := api.RenderChart(res, p, cfg.Chart, format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}
	params.Register(cmd)
	cmd.Flags().BoolVar(&png, "png", false, "Render PNG instead of SVG")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// ChartFlags are the chart options accepted on the command line. They map
// one to one onto the render endpoint's query parameters.
type ChartFlags struct {
	Column      string
	X           string
	Width       float64
	Container   float64
	Height      string
	Ratio       float64
	Axes        string
	Fill        bool
	Window      string
	Breakpoints string
	Mask        bool
	Selection   string
	Title       string
}

// Register adds the flags to cmd.
func (f *ChartFlags) Register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.Column, "column", "", "Y column (default: first numeric column)")
	fs.StringVar(&f.X, "x-column", "", "X column (default: row index)")
	fs.Float64Var(&f.Width, "width", 0, "Container width in pixels")
	fs.Float64Var(&f.Container, "container-height", 0, "Container height in pixels")
	fs.StringVar(&f.Height, "height", "", "Plot height, e.g. 120 or 50%")
	fs.Float64Var(&f.Ratio, "ratio", 0, "Aspect ratio of the plot")
	fs.StringVar(&f.Axes, "axes", "", "Axes to draw: x, y, xy or none")
	fs.BoolVar(&f.Fill, "fill", false, "Fill the area under the line")
	fs.StringVar(&f.Window, "window", "", "Index window start,end")
	fs.StringVar(&f.Breakpoints, "breakpoints", "", "Comma separated segment breakpoints")
	fs.BoolVar(&f.Mask, "mask", false, "Mask every other segment")
	fs.StringVar(&f.Selection, "selection", "", "Highlighted index range start,end")
	fs.StringVar(&f.Title, "title", "", "Chart title")
}

// ChartParams validates the flags through the same parser the HTTP API uses.
func (f *ChartFlags) ChartParams() (api.ChartParams, error) {
	q := map[string][]string{}
	set := func(k, v string) {
		if v != "" {
			q[k] = []string{v}
		}
	}
	num := func(k string, v float64) {
		if v != 0 {
			set(k, fmt.Sprint(v))
		}
	}
	flag := func(k string, v bool) {
		if v {
			set(k, "true")
		}
	}
	set("column", f.Column)
	set("x", f.X)
	num("width", f.Width)
	num("container_height", f.Container)
	set("height", f.Height)
	num("ratio", f.Ratio)
	set("axes", f.Axes)
	flag("fill", f.Fill)
	set("window", f.Window)
	set("breakpoints", f.Breakpoints)
	flag("mask", f.Mask)
	set("selection", f.Selection)
	set("title", f.Title)
	return api.ParseChartParams(q)
}
