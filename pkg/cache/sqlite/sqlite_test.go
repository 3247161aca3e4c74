package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/respond/pkg/cache"
	"github.com/papercomputeco/respond/pkg/cache/sqlite"
	"github.com/papercomputeco/respond/pkg/responses"
)

// sqliteTestEntry builds a cache entry holding a simple text response.
func sqliteTestEntry(key, text string) *cache.Entry {
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
			Usage: &responses.Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3},
		},
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewDriver", func() {
		It("creates a driver with a file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "cache.db")

			d, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Put and Get", func() {
		It("stores and retrieves an entry", func() {
			inserted, err := driver.Put(ctx, sqliteTestEntry("k1", "hello"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			entry, err := driver.Get(ctx, "k1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Key).To(Equal("k1"))
			Expect(entry.Model).To(Equal("gpt-4o"))
			Expect(entry.Response.GetText()).To(Equal("hello"))
			Expect(entry.Response.Usage.TotalTokens).To(Equal(3))
			Expect(entry.CreatedAt.IsZero()).To(BeFalse())
		})

		It("keeps the first entry on conflicting keys", func() {
			_, err := driver.Put(ctx, sqliteTestEntry("k1", "first"))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.Put(ctx, sqliteTestEntry("k1", "second"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			entry, err := driver.Get(ctx, "k1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Response.GetText()).To(Equal("first"))
		})

		It("returns NotFoundError for a missing key", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(cache.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Has", func() {
		It("reports presence and absence", func() {
			_, err := driver.Put(ctx, sqliteTestEntry("k1", "x"))
			Expect(err).NotTo(HaveOccurred())

			ok, err := driver.Has(ctx, "k1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = driver.Has(ctx, "absent")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Delete", func() {
		It("removes an entry", func() {
			_, err := driver.Put(ctx, sqliteTestEntry("k1", "x"))
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
				_, err := driver.Put(ctx, sqliteTestEntry(key, key))
				Expect(err).NotTo(HaveOccurred())
			}

			entries, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
		})
	})

	Describe("persistence", func() {
		It("survives reopening a file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "cache.db")

			d, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Put(ctx, sqliteTestEntry("k1", "persisted"))
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Close()).To(Succeed())

			reopened, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			entry, err := reopened.Get(ctx, "k1")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Response.GetText()).To(Equal("persisted"))
		})
	})
})
