package origin_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/origin"
)

var _ = Describe("Pool", func() {
	var origins []origin.Origin

	BeforeEach(func() {
		origins = []origin.Origin{
			{Host: "origin-a:8081"},
			{Host: "origin-b:8081"},
			{Host: "origin-c:8081"},
		}
	})

	Describe("with the sequential policy", func() {
		var pool *origin.Pool

		BeforeEach(func() {
			pool = origin.NewPool(origins, origin.NewSequentialPolicy())
		})

		It("should draw origins in configuration order", func() {
			first, err := pool.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Host).To(Equal("origin-a:8081"))

			second, err := pool.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Host).To(Equal("origin-b:8081"))

			third, err := pool.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(third.Host).To(Equal("origin-c:8081"))
		})

		It("should report exhaustion once every origin has been drawn", func() {
			for range origins {
				_, err := pool.Next()
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := pool.Next()
			Expect(err).To(MatchError(origin.ErrPoolExhausted))
		})

		It("should shrink as origins are drawn", func() {
			Expect(pool.Len()).To(Equal(3))

			_, err := pool.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Len()).To(Equal(2))
		})

		It("should not alias the caller's slice", func() {
			originsCopy := make([]origin.Origin, len(origins))
			copy(originsCopy, origins)

			p := origin.NewPool(origins, origin.NewSequentialPolicy())
			origins[0] = origin.Origin{Host: "mutated"}

			drawn, err := p.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(drawn.Host).To(Equal(originsCopy[0].Host))
		})
	})

	Describe("with the random policy", func() {
		It("should draw every origin exactly once before exhaustion", func() {
			pool := origin.NewPool(origins, origin.NewRandomPolicy())

			seen := make(map[string]int)
			for range origins {
				drawn, err := pool.Next()
				Expect(err).NotTo(HaveOccurred())
				seen[drawn.Host]++
			}

			_, err := pool.Next()
			Expect(err).To(MatchError(origin.ErrPoolExhausted))

			for _, o := range origins {
				Expect(seen[o.Host]).To(Equal(1))
			}
		})

		It("should pick each origin first with roughly equal frequency", func() {
			const trials = 3000

			firstPicks := make(map[string]int)
			for i := 0; i < trials; i++ {
				pool := origin.NewPool(origins, origin.NewRandomPolicy())
				drawn, err := pool.Next()
				Expect(err).NotTo(HaveOccurred())
				firstPicks[drawn.Host]++
			}

			// Expected 1000 each; a wide tolerance keeps the test
			// deterministic in practice.
			for _, o := range origins {
				Expect(firstPicks[o.Host]).To(BeNumerically(">", 800))
				Expect(firstPicks[o.Host]).To(BeNumerically("<", 1200))
			}
		})
	})

	Describe("with an empty origin list", func() {
		It("should be exhausted immediately", func() {
			pool := origin.NewPool(nil, origin.NewSequentialPolicy())

			Expect(pool.Len()).To(Equal(0))

			_, err := pool.Next()
			Expect(err).To(MatchError(origin.ErrPoolExhausted))
		})
	})
})

var _ = Describe("Policy", func() {
	It("should name the sequential policy", func() {
		Expect(origin.NewSequentialPolicy().Name()).To(Equal("sequential"))
	})

	It("should name the random policy", func() {
		Expect(origin.NewRandomPolicy().Name()).To(Equal("random"))
	})

	It("sequential should always pick the head", func() {
		policy := origin.NewSequentialPolicy()
		for n := 1; n <= 5; n++ {
			Expect(policy.Pick(n)).To(Equal(0))
		}
	})

	It("random should pick within bounds", func() {
		policy := origin.NewRandomPolicy()
		for i := 0; i < 100; i++ {
			pick := policy.Pick(3)
			Expect(pick).To(BeNumerically(">=", 0))
			Expect(pick).To(BeNumerically("<", 3))
		}
	})
})
