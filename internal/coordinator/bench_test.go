package coordinator

import (
	"context"
	"testing"
)

func BenchmarkRequestRefresh(b *testing.B) {
	coord := New("bench", func(_ context.Context) (int, error) {
		return 42, nil
	})
	defer coord.Shutdown()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		coord.RequestRefresh(ctx) //nolint:errcheck // benchmark
	}
}

func BenchmarkSetUpdatedData_100Listeners(b *testing.B) {
	coord := New[int]("bench-push", nil)
	defer coord.Shutdown()

	for i := 0; i < 100; i++ {
		coord.AddListener(func() {})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		coord.SetUpdatedData(i)
	}
}
