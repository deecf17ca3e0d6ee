package scene

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ============================================================
// Render loop
// ============================================================

var (
	ErrLoopStopped = errors.New("render loop stopped")
	ErrLoopPanic   = errors.New("render loop task panicked")
)

// Surface: цель отрисовки кадра. Release вызывается ровно один раз.
type Surface interface {
	Draw(scene *Scene, viewport Viewport) error
	Release() error
}

// Loop владеет композером и поверхностью: все изменения и кадры выполняются
// в одной горутине Run.
type Loop struct {
	composer *Composer
	surface  Surface
	interval time.Duration

	events  chan func()
	done    chan struct{}
	started sync.Once

	drawnGen uint64
	drawnVP  Viewport
	drawn    bool
	frames   int
}

func NewLoop(composer *Composer, surface Surface, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		composer: composer,
		surface:  surface,
		interval: interval,
		events:   make(chan func()),
		done:     make(chan struct{}),
	}
}

// Run крутит цикл до отмены ctx. На выходе закрывает композер и освобождает
// поверхность. Повторный запуск возвращает ErrLoopStopped.
func (l *Loop) Run(ctx context.Context) error {
	first := false
	l.started.Do(func() { first = true })
	if !first {
		return ErrLoopStopped
	}
	defer close(l.done)
	defer l.shutdown()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.events:
			fn()
		case <-ticker.C:
			if err := guard(l.frame); err != nil {
				log.Printf("[LOOP] draw failed: %v", err)
			}
		}
	}
}

// Do выполняет fn внутри цикла и ждёт результата.
func (l *Loop) Do(ctx context.Context, fn func(c *Composer) error) error {
	result := make(chan error, 1)
	task := func() {
		result <- guard(func() error { return fn(l.composer) })
	}

	select {
	case l.events <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-result
}

// Flush рисует кадр немедленно, если сцена или вьюпорт изменились.
func (l *Loop) Flush(ctx context.Context) error {
	return l.Do(ctx, func(*Composer) error { return l.frame() })
}

// Done закрывается после полной остановки цикла.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Frames возвращает число нарисованных кадров. Читать только внутри Do.
func (l *Loop) Frames() int {
	return l.frames
}

func (l *Loop) frame() error {
	sc := l.composer.Scene()
	vp := l.composer.Viewport()
	if l.drawn && sc.Generation == l.drawnGen && vp == l.drawnVP {
		return nil
	}
	if err := l.surface.Draw(sc, vp); err != nil {
		return err
	}
	l.drawn = true
	l.drawnGen = sc.Generation
	l.drawnVP = vp
	l.frames++
	return nil
}

// guard превращает панику задачи в ErrLoopPanic.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LOOP] recovered: %v", r)
			err = fmt.Errorf("%w: %v", ErrLoopPanic, r)
		}
	}()
	return fn()
}

func (l *Loop) shutdown() {
	l.composer.Close()
	if err := l.surface.Release(); err != nil {
		log.Printf("[LOOP] release surface: %v", err)
	}
}
