package automation_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/automation"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/storage"
)

const script = `name: smoke
description: two short runs and a small ensemble
steps:
  - scene: stack
    count: 3
    duration: 0.25
    save_as: tower
  - scene: drop
    count: 4
    duration: 0.25
    gravity: false
    broad_phase: false
  - scene: random
    count: 5
    duration: 0.25
    seed: 7
    trials: 3
`

func writeScript(dir, body string) string {
	path := filepath.Join(dir, "script.yaml")
	Expect(os.WriteFile(path, []byte(body), 0644)).To(Succeed())
	return path
}

var _ = Describe("Scenario scripts", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("resolves steps against the defaults", func() {
		sc, err := automation.LoadScenario(writeScript(dir, script))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Name).To(Equal("smoke"))
		Expect(sc.Steps).To(HaveLen(3))

		cfg, err := sc.Steps[1].Config()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Scene).To(Equal("drop"))
		Expect(cfg.Physics.UseGravity).To(BeFalse())
		Expect(cfg.Physics.UseBroadPhase).To(BeFalse())
		Expect(cfg.FrameRate).To(Equal(60.0))
	})

	It("rejects scripts without steps", func() {
		_, err := automation.LoadScenario(writeScript(dir, "name: empty\n"))
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects unknown presets", func() {
		step := automation.ScenarioStep{Scene: "stack", Preset: "nope"}
		_, err := step.Config()
		Expect(err).To(MatchError(dynamo.ErrUnknownScene))
	})

	It("runs every step and stores single runs", func() {
		sc, err := automation.LoadScenario(writeScript(dir, script))
		Expect(err).NotTo(HaveOccurred())

		store := storage.New(filepath.Join(dir, "runs"))
		Expect(store.Init()).To(Succeed())

		results, err := automation.RunScenario(context.Background(), sc, store)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))

		Expect(results[0].Label).To(Equal("tower"))
		Expect(results[0].Result.Frames).To(Equal(15))
		Expect(results[0].RunID).NotTo(BeEmpty())
		Expect(results[1].Label).To(Equal("drop#2"))

		Expect(results[2].Result).To(BeNil())
		Expect(results[2].Trials).To(HaveLen(3))
		Expect(results[2].Trials[0].Seed).To(Equal(int64(7)))

		stored, err := store.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(HaveLen(2))
	})

	It("stops at the first failing step", func() {
		bad := "steps:\n  - scene: stack\n    duration: 0.1\n  - scene: marbles\n"
		sc, err := automation.LoadScenario(writeScript(dir, bad))
		Expect(err).NotTo(HaveOccurred())

		results, err := automation.RunScenario(context.Background(), sc, nil)
		Expect(err).To(MatchError(dynamo.ErrUnknownScene))
		Expect(results).To(HaveLen(1))
	})
})

var _ = Describe("MonteCarloStats", func() {
	It("counts stable and unstable trials", func() {
		stable, unstable := automation.MonteCarloStats([]automation.MonteCarloResult{
			{Stable: true}, {Stable: false}, {Stable: true},
		})
		Expect(stable).To(Equal(2))
		Expect(unstable).To(Equal(1))
	})
})
