// Command preview собирает две выкройки по парам точек и сохраняет кадр в PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/mapper"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/pairing"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/parser"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/service"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/common/config"
)

// pairList собирает повторяющийся флаг -pair fx,fy:bx,by.
type pairList [][2]models.Point

func (p *pairList) String() string {
	parts := make([]string, len(*p))
	for i, pr := range *p {
		parts[i] = fmt.Sprintf("%g,%g:%g,%g", pr[0].X, pr[0].Y, pr[1].X, pr[1].Y)
	}
	return strings.Join(parts, " ")
}

func (p *pairList) Set(raw string) error {
	front, back, ok := strings.Cut(raw, ":")
	if !ok {
		return fmt.Errorf("want fx,fy:bx,by, got %q", raw)
	}
	f, err := parsePoint(front)
	if err != nil {
		return err
	}
	b, err := parsePoint(back)
	if err != nil {
		return err
	}
	*p = append(*p, [2]models.Point{f, b})
	return nil
}

func parsePoint(raw string) (models.Point, error) {
	xs, ys, ok := strings.Cut(raw, ",")
	if !ok {
		return models.Point{}, fmt.Errorf("want x,y, got %q", raw)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return models.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return models.Point{}, err
	}
	return models.Point{X: x, Y: y}, nil
}

func main() {
	var pairs pairList
	var (
		frontPath = flag.String("f", "", "front piece svg")
		backPath  = flag.String("b", "", "back piece svg")
		output    = flag.String("o", "assembly.png", "output file")
		width     = flag.Int("w", 0, "viewport width (default from config)")
		height    = flag.Int("h", 0, "viewport height (default from config)")
	)
	flag.Var(&pairs, "pair", "sewing pair in container pixels: fx,fy:bx,by (repeatable)")
	flag.Parse()

	if *frontPath == "" || *backPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	opts, err := service.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("assembly options: %v", err)
	}
	if *width > 0 && *height > 0 {
		opts.Viewport = scene.Viewport{Width: *width, Height: *height}
	}

	recorder := pairing.New(opts.Container)
	for i, pr := range pairs {
		if _, err := recorder.Click(models.PieceFront, pr[0].X, pr[0].Y); err != nil {
			log.Fatalf("pair %d: %v", i, err)
		}
		if _, err := recorder.Click(models.PieceBack, pr[1].X, pr[1].Y); err != nil {
			log.Fatalf("pair %d: %v", i, err)
		}
	}

	composer := scene.NewComposer(opts)
	composer.Attach(recorder)
	for side, path := range map[models.Piece]string{models.PieceFront: *frontPath, models.PieceBack: *backPath} {
		if err := loadPiece(composer, side, path, opts.DefaultViewBox); err != nil {
			log.Fatalf("%s piece: %v", side, err)
		}
	}

	surface := mapper.NewRasterSurface()
	loop := scene.NewLoop(composer, surface, opts.FrameInterval)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	if err := loop.Flush(ctx); err != nil {
		log.Fatalf("render: %v", err)
	}
	var data []byte
	var sc *scene.Scene
	err = loop.Do(ctx, func(c *scene.Composer) error {
		sc = c.Scene()
		var err error
		data, err = surface.PNG()
		return err
	})
	cancel()
	<-loop.Done()
	if err != nil {
		log.Fatalf("encode: %v", err)
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	if sc.Advisory != "" {
		log.Printf("%s", sc.Advisory)
	}
	log.Printf("Preview saved to %s (%dx%d, %s, %d pairs)", *output, opts.Viewport.Width, opts.Viewport.Height, sc.Status, sc.Pairs)
}

func loadPiece(c *scene.Composer, side models.Piece, path string, fallback models.ViewBox) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	outline, err := parser.ParseSVG(f, fallback)
	if err != nil {
		return err
	}
	return c.SetPiece(side, *outline)
}
