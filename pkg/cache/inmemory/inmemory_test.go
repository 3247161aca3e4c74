package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/respond/pkg/cache"
	"github.com/papercomputeco/respond/pkg/cache/inmemory"
	"github.com/papercomputeco/respond/pkg/responses"
)

// testEntry builds a cache entry holding a simple text response.
func testEntry(key, text string) *cache.Entry {
	return &cache.Entry{
		Key:   key,
		Model: "gpt-4o",
		Response: &responses.Response{
			ID:     "resp_" + key,
			Model:  "gpt-4o",
			Status: "completed",
			Output: []responses.OutputItem{
				{Type: "message", Content: []responses.ContentPart{{Type: "output_text", Text: text}}},
			},
		},
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
	})

	Describe("Put and Get", func() {
		It("stores and retrieves an entry", func() {
			inserted, err := driver.Put(ctx, testEntry("k1", "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			entry, err := driver.Get(ctx, "k1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Response.GetText()).To(Equal("hello"))
		})

		It("does not overwrite an existing key", func() {
			_, err := driver.Put(ctx, testEntry("k1", "first"))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.Put(ctx, testEntry("k1", "second"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			entry, err := driver.Get(ctx, "k1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Response.GetText()).To(Equal("first"))
		})

		It("rejects a nil entry", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(HaveOccurred())
		})

		It("returns NotFoundError for a missing key", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(cache.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Has", func() {
		It("reports presence and absence", func() {
			_, err := driver.Put(ctx, testEntry("k1", "x"))
			Expect(err).NotTo(HaveOccurred())

			ok, err := driver.Has(ctx, "k1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = driver.Has(ctx, "k2")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Delete", func() {
		It("removes an entry", func() {
			_, err := driver.Put(ctx, testEntry("k1", "x"))
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.Delete(ctx, "k1")).To(Succeed())

			ok, _ := driver.Has(ctx, "k1")
			Expect(ok).To(BeFalse())
		})

		It("is a no-op for a missing key", func() {
			Expect(driver.Delete(ctx, "ghost")).To(Succeed())
		})
	})

	Describe("List", func() {
		It("returns all entries", func() {
			for _, key := range []string{"a", "b", "c"} {
				_, err := driver.Put(ctx, testEntry(key, key))
				Expect(err).NotTo(HaveOccurred())
			}

			entries, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
		})

		It("is empty for a fresh driver", func() {
			entries, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})
})
