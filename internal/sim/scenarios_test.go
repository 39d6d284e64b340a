package sim_test

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/world"
)

const frameDt = 1.0 / 60

// steppedClock makes every Update look like it took *cost of wall time.
func steppedClock(cost *time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(*cost)
		return now
	}
}

type events struct {
	begins, ends int
}

func (e *events) listener() dynamo.CollisionListener {
	return dynamo.ListenerFuncs{
		Begin: func(_, _ *dynamo.Entity) { e.begins++ },
		End:   func(_, _ *dynamo.Entity) { e.ends++ },
	}
}

func newFloor() *dynamo.Entity {
	floor := dynamo.NewEntity("floor")
	floor.SetVolume(shape.NewAABB(mgl64.Vec3{10, 1, 10}))
	floor.AttachBody(0)
	return floor
}

func newBall(pos mgl64.Vec3) *dynamo.Entity {
	ball := dynamo.NewEntity("ball")
	ball.SetVolume(shape.NewSphere(0.5))
	ball.Transform().SetPosition(pos)
	ball.AttachBody(1)
	return ball
}

func build(gravity, broad bool, entities ...*dynamo.Entity) *sim.Simulator {
	w := world.New(7)
	for _, e := range entities {
		w.AddEntity(e)
	}
	settings := sim.DefaultSettings()
	settings.UseGravity = gravity
	settings.UseBroadPhase = broad
	s, err := sim.New(w, integrators.NewSemiImplicitEuler(), settings)
	Expect(err).NotTo(HaveOccurred())
	var free time.Duration
	s.SetClock(steppedClock(&free))
	return s
}

var _ = Describe("Simulator", func() {
	DescribeTable("a sphere dropped on an immovable floor comes to rest",
		func(broad bool) {
			ball := newBall(mgl64.Vec3{0, 2, 0})
			s := build(true, broad, newFloor(), ball)

			var heights []float64
			for i := 0; i < 300; i++ {
				s.Update(frameDt)
				if i >= 240 {
					heights = append(heights, ball.Transform().Position().Y())
				}
			}

			for _, y := range heights {
				Expect(y).To(BeNumerically("~", 1.5, 0.02))
			}
			Expect(ball.Body().LinearVelocity().Len()).To(BeNumerically("<", 0.5))
			Expect(s.Contacts()).To(Equal(1))
		},
		Entry("with the broad-phase", true),
		Entry("with all-pairs testing", false),
	)

	It("reports one begin per episode and nothing once settled", func() {
		var floorEvents, ballEvents events
		floor := newFloor()
		floor.SetListener(floorEvents.listener())
		ball := newBall(mgl64.Vec3{0, 2, 0})
		ball.SetListener(ballEvents.listener())
		s := build(true, true, floor, ball)

		for i := 0; i < 180; i++ {
			s.Update(frameDt)
		}
		settled := ballEvents
		Expect(settled.begins).To(BeNumerically(">=", 1))
		Expect(settled.begins).To(Equal(settled.ends + 1))
		Expect(floorEvents).To(Equal(ballEvents))

		for i := 0; i < 120; i++ {
			s.Update(frameDt)
		}
		Expect(ballEvents).To(Equal(settled))
	})

	It("ends a contact after the persistence window once the bodies part", func() {
		var ballEvents events
		ball := newBall(mgl64.Vec3{0, 1.45, 0})
		ball.SetListener(ballEvents.listener())
		s := build(false, false, newFloor(), ball)

		s.Update(frameDt)
		Expect(ballEvents.begins).To(Equal(1))

		ball.Transform().SetPosition(mgl64.Vec3{0, 20, 0})
		ball.Body().SetLinearVelocity(mgl64.Vec3{})
		frames := 0
		for ballEvents.ends == 0 && frames < 20 {
			s.Update(frameDt)
			frames++
		}
		Expect(ballEvents.ends).To(Equal(1))
		Expect(frames).To(Equal(5))
	})

	It("bounces two approaching spheres apart", func() {
		a := newBall(mgl64.Vec3{-0.45, 0, 0})
		b := newBall(mgl64.Vec3{0.45, 0, 0})
		a.Body().SetLinearVelocity(mgl64.Vec3{1, 0, 0})
		b.Body().SetLinearVelocity(mgl64.Vec3{-1, 0, 0})
		s := build(false, false, a, b)

		s.Update(frameDt)

		Expect(a.Body().LinearVelocity().X()).To(BeNumerically("<", 0))
		Expect(b.Body().LinearVelocity().X()).To(BeNumerically(">", 0))
		gap := b.Transform().Position().X() - a.Transform().Position().X()
		Expect(gap).To(BeNumerically(">=", 1-1e-9))
	})

	Describe("the adaptive step rate", func() {
		var (
			s    *sim.Simulator
			cost time.Duration
		)

		BeforeEach(func() {
			s = build(true, true, newFloor(), newBall(mgl64.Vec3{0, 3, 0}))
			cost = 0
			s.SetClock(steppedClock(&cost))
		})

		It("halves while frames are over budget and holds once they fit", func() {
			cost = 20 * time.Millisecond
			var rates []int
			for i := 0; i < 5; i++ {
				s.Update(frameDt)
				rates = append(rates, s.Hz())
			}
			Expect(rates).To(Equal([]int{60, 30, 30, 30, 30}))
		})

		It("never drops below one step per second", func() {
			cost = time.Minute
			for i := 0; i < 20; i++ {
				s.Update(frameDt)
				Expect(s.Hz()).To(BeNumerically(">=", 1))
			}
			Expect(s.Hz()).To(Equal(1))
		})

		It("climbs back to the ideal rate when there is slack", func() {
			cost = time.Minute
			for i := 0; i < 10; i++ {
				s.Update(frameDt)
			}
			cost = 0
			for i := 0; i < 10; i++ {
				s.Update(0.001)
			}
			Expect(s.Hz()).To(Equal(sim.DefaultIdealHz))
		})
	})
})
