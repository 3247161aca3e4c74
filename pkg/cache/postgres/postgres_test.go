package postgres_test

import (
	"context"
	"fmt"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/respond/pkg/cache"
	"github.com/papercomputeco/respond/pkg/cache/postgres"
	"github.com/papercomputeco/respond/pkg/responses"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("RESPOND_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("RESPOND_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

// postgresTestEntry builds a cache entry holding a simple text response.
func postgresTestEntry(key, text string) *cache.Entry {
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
		driver *postgres.Driver
		ctx    context.Context
		keys   []string
	)

	key := func(name string) string {
		k := fmt.Sprintf("%s-%d", name, GinkgoRandomSeed())
		keys = append(keys, k)
		return k
	}

	BeforeEach(func() {
		ctx = context.Background()
		keys = nil

		var err error
		driver, err = postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			for _, k := range keys {
				_ = driver.Delete(ctx, k)
			}
			driver.Close()
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves an entry", func() {
			k := key("put-get")

			inserted, err := driver.Put(ctx, postgresTestEntry(k, "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			entry, err := driver.Get(ctx, k)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Response.GetText()).To(Equal("hello"))
		})

		It("keeps the first entry on conflicting keys", func() {
			k := key("conflict")

			_, err := driver.Put(ctx, postgresTestEntry(k, "first"))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.Put(ctx, postgresTestEntry(k, "second"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			entry, err := driver.Get(ctx, k)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Response.GetText()).To(Equal("first"))
		})

		It("returns NotFoundError for a missing key", func() {
			_, err := driver.Get(ctx, "missing-"+key("absent"))
			Expect(cache.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Has and Delete", func() {
		It("reports presence, then absence after delete", func() {
			k := key("has-delete")

			_, err := driver.Put(ctx, postgresTestEntry(k, "x"))
			Expect(err).NotTo(HaveOccurred())

			ok, err := driver.Has(ctx, k)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			Expect(driver.Delete(ctx, k)).To(Succeed())

			ok, err = driver.Has(ctx, k)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
