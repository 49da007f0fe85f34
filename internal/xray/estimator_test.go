package xray_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beamhard/internal/physics"
	"github.com/san-kum/beamhard/internal/xray"
)

var calcite = xray.Material{Name: "calcite", Formula: "Ca:1:C:1:O:3", ThicknessCM: 3, Density: 2.71}

func referenceRequest(grid xray.EnergyGrid) xray.Request {
	cu, err := physics.ElementDensity("Cu")
	Expect(err).NotTo(HaveOccurred())
	return xray.Request{
		Grid:     grid,
		Source:   xray.Source{Target: "W", KV: 160, MA: 100},
		Filter:   xray.Material{Formula: "Cu", ThicknessCM: 0.4, Density: cu},
		Sample:   calcite,
		Detector: xray.Material{Formula: "Cs:1:I:1", ThicknessCM: 0.01, Density: 4.51},
	}
}

var _ = Describe("Beam hardening estimation", func() {
	var (
		ctx    context.Context
		calc   *physics.Calculator
		sim    *xray.Simulator
		solver *xray.Solver
	)

	BeforeEach(func() {
		ctx = context.Background()
		calc = physics.NewCalculator()
		sim = xray.NewSimulator(calc, physics.Kramers{})
		solver = xray.NewSolver(physics.NewInverter(calc))
	})

	Context("with a tungsten tube at 160 kV through copper and calcite", func() {
		It("reports a harder nominal effective energy than the thin path", func() {
			grid, err := xray.NewEnergyGrid(10, 160, 1)
			Expect(err).NotTo(HaveOccurred())

			_, totals, err := sim.Simulate(ctx, referenceRequest(grid))
			Expect(err).NotTo(HaveOccurred())
			Expect(totals.FilteredDetected).To(BeNumerically(">", totals.ThinDetected))
			Expect(totals.ThinDetected).To(BeNumerically(">", totals.SampleDetected))

			res, err := solver.Solve(totals, calcite)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.HasSolution()).To(BeTrue())
			Expect(res.Nominal.Status).To(Equal(xray.StatusSolved))
			Expect(res.Thin.Status).To(Equal(xray.StatusSolved))

			m := res.Matches[0]
			Expect(m.NominalKeV).To(BeNumerically(">", m.ThinKeV))
			Expect(m.HardeningPercent).To(BeNumerically(">", 0))
			Expect(m.HardeningPercent).To(BeNumerically("<", 100))
			Expect(m.NominalKeV).To(BeNumerically("<", 160))
			Expect(m.ThinKeV).To(BeNumerically(">", 10))
		})

		It("produces a concave attenuation curve starting at zero", func() {
			grid, err := xray.GridFromTube(160, 10, 1)
			Expect(err).NotTo(HaveOccurred())
			req := referenceRequest(grid)

			curve, err := sim.Sweep(ctx, xray.SweepRequest{
				Grid:           req.Grid,
				Source:         req.Source,
				Filter:         req.Filter,
				Sample:         req.Sample,
				Detector:       req.Detector,
				StepCM:         0.1,
				MaxThicknessCM: 3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(curve.Points).To(HaveLen(31))
			Expect(curve.Points[0].Attenuation).To(BeZero())

			a := curve.Attenuations()
			for i := 1; i < len(a); i++ {
				Expect(a[i]).To(BeNumerically(">", a[i-1]))
			}
			for i := 1; i < len(a)-1; i++ {
				Expect(a[i+1] - 2*a[i] + a[i-1]).To(BeNumerically("<", 0))
			}
			initial := a[1] / curve.Points[1].ThicknessCM
			chord := a[len(a)-1] / curve.Points[len(a)-1].ThicknessCM
			Expect(chord).To(BeNumerically("<", initial))
		})
	})

	Context("with a single-bin spectrum", func() {
		It("recovers the bin energy with no hardening", func() {
			const e0 = 60.0
			grid, err := xray.NewEnergyGrid(e0, e0, 1)
			Expect(err).NotTo(HaveOccurred())

			_, totals, err := sim.Simulate(ctx, referenceRequest(grid))
			Expect(err).NotTo(HaveOccurred())

			res, err := solver.Solve(totals, calcite)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Matches).To(HaveLen(1))
			Expect(res.Matches[0].NominalKeV).To(BeNumerically("~", e0, 0.5))
			Expect(res.Matches[0].ThinKeV).To(BeNumerically("~", e0, 0.5))
			Expect(math.Abs(res.Matches[0].HardeningPercent)).To(BeNumerically("<", 0.01))
		})
	})

	Context("with invalid input", func() {
		It("rejects an unknown formula before simulating", func() {
			grid, err := xray.NewEnergyGrid(160, 10, 1)
			Expect(err).NotTo(HaveOccurred())
			req := referenceRequest(grid)
			req.Sample.Formula = "Ca:1:Xq:3"

			_, _, err = sim.Simulate(ctx, req)
			Expect(err).To(MatchError(xray.ErrInvalidFormula))
			Expect(err).To(MatchError(physics.ErrBadFormula))
		})

		It("treats a zero sample thickness as degenerate", func() {
			grid, err := xray.NewEnergyGrid(160, 10, 1)
			Expect(err).NotTo(HaveOccurred())
			req := referenceRequest(grid)
			req.Sample.ThicknessCM = 0

			_, totals, err := sim.Simulate(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			res, err := solver.Solve(totals, req.Sample)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Nominal.Err()).To(MatchError(xray.ErrDegenerateIntegral))
			Expect(res.HasSolution()).To(BeFalse())
		})
	})
})
