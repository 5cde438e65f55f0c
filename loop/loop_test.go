package loop_test

import (
	"time"

	"github.com/db47h/dlsim"
	"github.com/db47h/dlsim/hwlib"
	"github.com/db47h/dlsim/loop"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func testLib() dlsim.Library {
	lib := hwlib.Standard()
	lib.Add(&dlsim.ChipDesc{
		Name:    "KEYED",
		Outputs: []dlsim.PinDesc{{ID: 0, Name: "out"}},
		Chips:   []dlsim.SubChipDesc{{ID: 0, Chip: "KEY", State: []uint32{5}}},
		Wires:   []dlsim.WireDesc{{From: dlsim.PinAddress{Chip: 0, Pin: 0}, To: dlsim.PinAddress{Chip: dlsim.Self, Pin: 0}}},
	})
	return lib
}

var _ = Describe("Loop", func() {
	var (
		logger *logrus.Logger
		hook   *test.Hook
		cfg    dlsim.Config
	)

	BeforeEach(func() {
		logger, hook = test.NewNullLogger()
		cfg = dlsim.DefaultConfig()
		cfg.Seed = 1
		cfg.TicksPerSecond = 0
		cfg.PublishInterval = time.Millisecond
		cfg.Logger = logger
	})

	start := func(name string) *loop.Loop {
		c, err := dlsim.Build(testLib(), name, cfg)
		Expect(err).NotTo(HaveOccurred())
		l := loop.New(c)
		Expect(l.Start()).To(Succeed())
		DeferCleanup(l.Stop)
		return l
	}

	tick := func(l *loop.Loop) func() uint64 {
		return func() uint64 { return l.Frame().Tick }
	}

	It("should publish an initial frame", func() {
		c, err := dlsim.Build(testLib(), "NOT", cfg)
		Expect(err).NotTo(HaveOccurred())
		l := loop.New(c)
		Expect(l.Frame()).NotTo(BeNil())
		Expect(l.Frame().Tick).To(Equal(uint64(0)))
	})

	It("should run ticks and publish frames", func() {
		l := start("NOT")
		Eventually(tick(l)).Should(BeNumerically(">", 100))
		Eventually(l.TicksPerSecond).Should(BeNumerically(">", 0))
	})

	It("should not start twice", func() {
		l := start("NOT")
		Expect(l.Start()).To(MatchError(loop.ErrStarted))
	})

	It("should log start and stop", func() {
		l := start("NOT")
		l.Stop()
		var msgs []string
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.InfoLevel {
				msgs = append(msgs, e.Message)
			}
		}
		Expect(msgs).To(Equal([]string{"simulation started", "simulation stopped"}))
	})

	It("should feed inputs", func() {
		l := start("NOT")
		l.SetInputs([]dlsim.Value{dlsim.Bool(false)})
		Eventually(func() []dlsim.Value { return l.Frame().Outputs() }).Should(Equal([]dlsim.Value{dlsim.Bool(true)}))
		l.SetInputs([]dlsim.Value{dlsim.Bool(true)})
		Eventually(func() []dlsim.Value { return l.Frame().Outputs() }).Should(Equal([]dlsim.Value{dlsim.Bool(false)}))
	})

	It("should feed keys", func() {
		l := start("KEYED")
		l.SetKeys(dlsim.Keys(5))
		Eventually(func() []dlsim.Value { return l.Frame().Outputs() }).Should(Equal([]dlsim.Value{dlsim.Bool(true)}))
		l.SetKeys(dlsim.Keys(4))
		Eventually(func() []dlsim.Value { return l.Frame().Outputs() }).Should(Equal([]dlsim.Value{dlsim.Bool(false)}))
	})

	It("should honor the tick rate", func() {
		cfg.TicksPerSecond = 50
		l := start("NOT")
		time.Sleep(200 * time.Millisecond)
		Expect(l.Frame().Tick).To(BeNumerically("<", 30))
	})

	Describe("pause and step", func() {
		It("should stop ticking while paused", func() {
			l := start("NOT")
			Eventually(tick(l)).Should(BeNumerically(">", 10))
			l.Pause()
			Expect(l.Paused()).To(BeTrue())
			time.Sleep(50 * time.Millisecond)
			t := l.Frame().Tick
			Consistently(tick(l), 100*time.Millisecond).Should(Equal(t))

			l.Step()
			Eventually(tick(l)).Should(Equal(t + 1))
			l.Step()
			l.Step()
			Eventually(tick(l)).Should(Equal(t + 3))
			Consistently(tick(l), 50*time.Millisecond).Should(Equal(t + 3))

			l.Resume()
			Eventually(tick(l)).Should(BeNumerically(">", t+10))
		})
	})

	Describe("edits", func() {
		It("should apply edits between ticks", func() {
			l := start("NOT")
			r := l.Apply(dlsim.Edit{Op: dlsim.AddChip, Chip: dlsim.SubChipDesc{ID: 7, Chip: "AND"}})
			Eventually(r).Should(Receive(BeNil()))

			// the added composite is never seen half built
			Eventually(func() bool {
				ci, ok := l.Frame().Chip([]dlsim.ChipID{7})
				if ok {
					Expect(ci.Pins).To(HaveLen(3))
					Expect(ci.Children).To(HaveLen(2))
				}
				return ok
			}).Should(BeTrue())

			r = l.Apply(dlsim.Edit{Op: dlsim.RemoveChip, ID: 7})
			Eventually(r).Should(Receive(BeNil()))
			Eventually(func() bool {
				_, ok := l.Frame().Chip([]dlsim.ChipID{7})
				return ok
			}).Should(BeFalse())
		})

		It("should apply edits while paused", func() {
			l := start("NOT")
			l.Pause()
			r := l.Apply(dlsim.Edit{Op: dlsim.AddChip, Chip: dlsim.SubChipDesc{ID: 3, Chip: "NAND"}})
			Eventually(r).Should(Receive(BeNil()))
			Eventually(func() bool {
				_, ok := l.Frame().Chip([]dlsim.ChipID{3})
				return ok
			}).Should(BeTrue())
		})

		It("should report and log failed edits", func() {
			l := start("NOT")
			r := l.Apply(dlsim.Edit{Op: dlsim.RemoveChip, ID: 42})
			Eventually(r).Should(Receive(HaveOccurred()))
			l.Stop()
			var warns int
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel && e.Message == "edit failed" {
					Expect(e.Data).To(HaveKeyWithValue("op", "remove-chip"))
					warns++
				}
			}
			Expect(warns).To(Equal(1))
		})

		It("should queue edits with a zero value config", func() {
			c, err := dlsim.Build(testLib(), "NOT", dlsim.Config{Seed: 1, Logger: logger})
			Expect(err).NotTo(HaveOccurred())
			l := loop.New(c)
			Expect(l.Start()).To(Succeed())
			DeferCleanup(l.Stop)
			var rs []<-chan error
			for i := 0; i < 50; i++ {
				rs = append(rs, l.Apply(dlsim.Edit{Op: dlsim.AddChip, Chip: dlsim.SubChipDesc{ID: dlsim.ChipID(10 + i), Chip: "NAND"}}))
			}
			for _, r := range rs {
				Eventually(r).Should(Receive(BeNil()))
			}
			Eventually(func() []dlsim.ChipID {
				ci, _ := l.Frame().Chip(nil)
				return ci.Children
			}).Should(HaveLen(51))
		})

		It("should reject edits when the queue is full", func() {
			cfg.EditQueue = 1
			c, err := dlsim.Build(testLib(), "NOT", cfg)
			Expect(err).NotTo(HaveOccurred())
			l := loop.New(c)
			e := dlsim.Edit{Op: dlsim.AddChip, Chip: dlsim.SubChipDesc{ID: 3, Chip: "NAND"}}
			Expect(l.Enqueue(e)).To(Succeed())
			Expect(l.Enqueue(e)).To(MatchError(loop.ErrQueueFull))
			Expect(l.Apply(e)).To(Receive(MatchError(loop.ErrQueueFull)))
		})
	})
})
