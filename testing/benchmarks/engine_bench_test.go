package benchmarks

import (
	"context"
	"testing"

	"github.com/zoobzio/cloak"
	"github.com/zoobzio/cloak/json"
	cloaktest "github.com/zoobzio/cloak/testing"
)

func BenchmarkStringify_Customer(b *testing.B) {
	e := cloaktest.TestEngine(b)
	c := cloaktest.SampleCustomer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Stringify(context.Background(), c)
	}
}

func BenchmarkStringify_CyclicTeam(b *testing.B) {
	e := cloaktest.TestEngine(b)
	team := cloaktest.CyclicTeam()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Stringify(context.Background(), team)
	}
}

func BenchmarkMaskCopy_Cloner(b *testing.B) {
	e := cloaktest.TestEngine(b)
	c := cloaktest.SampleCustomer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cloak.MaskCopy(context.Background(), e, c)
	}
}

func BenchmarkMutate_ReflectCopier(b *testing.B) {
	e := cloaktest.TestEngine(b)
	c := cloaktest.SampleCustomer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Mutate(context.Background(), &c)
	}
}

func BenchmarkMutate_CodecCopier(b *testing.B) {
	e := cloaktest.TestEngine(b, cloak.WithCopier(cloak.CodecCopier(json.New())))
	c := cloaktest.SampleCustomer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Mutate(context.Background(), &c)
	}
}

func BenchmarkProcessStringBody(b *testing.B) {
	e := cloaktest.TestEngine(b)
	body := `{"user":{"name":"张三","phone":"13812345678"},"items":[1,2,3]}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.ProcessStringBody(context.Background(), body)
	}
}

func BenchmarkDescribe_Cached(b *testing.B) {
	_ = cloak.Prepare[cloaktest.Customer]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cloak.Prepare[cloaktest.Customer]()
	}
}
