package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerard.app/bot/internal/worker"
)

var _ = Describe("Dispatcher", func() {
	var (
		dispatcher *worker.Dispatcher
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dispatcher = worker.NewDispatcher()
		DeferCleanup(func() {
			Expect(dispatcher.Stop(context.Background())).To(Succeed())
		})
	})

	It("runs tasks of the same key one at a time in submission order", func() {
		var (
			mu      sync.Mutex
			order   []int
			running atomic.Int32
			overlap atomic.Bool
		)

		for i := 0; i < 10; i++ {
			Expect(dispatcher.Submit(ctx, "123", func(context.Context) error {
				if running.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(2 * time.Millisecond)
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				running.Add(-1)
				return nil
			})).To(Succeed())
		}

		Eventually(func() int {
			mu.Lock()
			defer mu.Unlock()
			return len(order)
		}).Should(Equal(10))

		Expect(overlap.Load()).To(BeFalse())
		Expect(order).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	})

	It("runs different keys concurrently", func() {
		release := make(chan struct{})
		started := make(chan string, 2)

		for _, key := range []string{"123", "456"} {
			Expect(dispatcher.Submit(ctx, key, func(context.Context) error {
				started <- key
				<-release
				return nil
			})).To(Succeed())
		}

		Eventually(started).Should(Receive())
		Eventually(started).Should(Receive())
		Expect(dispatcher.Busy()).To(Equal(2))
		close(release)
		Eventually(dispatcher.Busy).Should(BeZero())
	})

	It("keeps the lane alive after a failing or panicking task", func() {
		var ran atomic.Bool

		Expect(dispatcher.Submit(ctx, "dm", func(context.Context) error {
			return errors.New("boom")
		})).To(Succeed())
		Expect(dispatcher.Submit(ctx, "dm", func(context.Context) error {
			panic("kaboom")
		})).To(Succeed())
		Expect(dispatcher.Submit(ctx, "dm", func(context.Context) error {
			ran.Store(true)
			return nil
		})).To(Succeed())

		Eventually(ran.Load).Should(BeTrue())
	})

	It("passes the submit context to the task", func() {
		type key struct{}
		got := make(chan any, 1)
		taskCtx := context.WithValue(ctx, key{}, "run-1")

		Expect(dispatcher.Submit(taskCtx, "123", func(c context.Context) error {
			got <- c.Value(key{})
			return nil
		})).To(Succeed())

		Eventually(got).Should(Receive(Equal("run-1")))
	})

	Describe("Stop", func() {
		It("drains queued work and then rejects new tasks", func() {
			var count atomic.Int32
			for i := 0; i < 3; i++ {
				Expect(dispatcher.Submit(ctx, "123", func(context.Context) error {
					time.Sleep(5 * time.Millisecond)
					count.Add(1)
					return nil
				})).To(Succeed())
			}

			Expect(dispatcher.Stop(ctx)).To(Succeed())
			Expect(count.Load()).To(Equal(int32(3)))

			err := dispatcher.Submit(ctx, "123", func(context.Context) error { return nil })
			Expect(err).To(MatchError(worker.ErrStopped))
		})

		It("gives up when the drain deadline passes", func() {
			release := make(chan struct{})
			DeferCleanup(func() { close(release) })
			Expect(dispatcher.Submit(ctx, "123", func(context.Context) error {
				<-release
				return nil
			})).To(Succeed())

			stopCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()

			Expect(dispatcher.Stop(stopCtx)).To(MatchError(context.DeadlineExceeded))
		})
	})
})
