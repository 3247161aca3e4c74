package replay_test

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/respond/pkg/replay"
	"github.com/papercomputeco/respond/pkg/sse"
)

const testTranscript = "event: response.created\n" +
	"data: {\"type\":\"response.created\",\"response\":{\"id\":\"resp_1\",\"model\":\"gpt-4o\",\"created_at\":1}}\n" +
	"\n" +
	"event: response.output_text.delta\n" +
	"data: {\"type\":\"response.output_text.delta\",\"item_id\":\"i1\",\"delta\":\"Hello\"}\n" +
	"\n" +
	"data: [DONE]\n" +
	"\n"

// writeTranscript drops a transcript file into dir under name.sse.
func writeTranscript(dir, name, content string) {
	path := filepath.Join(dir, name+".sse")
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
}

var _ = Describe("Server", func() {
	var (
		dir    string
		server *replay.Server
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		writeTranscript(dir, "gpt-4o", testTranscript)

		var err error
		server, err = replay.New(replay.Config{
			ListenAddr:     ":0",
			TranscriptsDir: dir,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	Describe("New", func() {
		It("requires a transcripts directory", func() {
			_, err := replay.New(replay.Config{})
			Expect(err).To(HaveOccurred())
		})

		It("indexes transcripts at startup", func() {
			Expect(server.Names()).To(ConsistOf("gpt-4o"))
		})

		It("ignores files without the transcript extension", func() {
			Expect(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)).To(Succeed())

			s, err := replay.New(replay.Config{TranscriptsDir: dir})
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			Expect(s.Names()).To(ConsistOf("gpt-4o"))
		})
	})

	Describe("GET /transcripts", func() {
		It("lists indexed transcripts", func() {
			req, _ := http.NewRequest(http.MethodGet, "/transcripts", nil)
			resp, err := server.App().Test(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Transcripts []string `json:"transcripts"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
			Expect(body.Transcripts).To(ConsistOf("gpt-4o"))
		})
	})

	Describe("GET /transcripts/:name", func() {
		It("streams the transcript frames", func() {
			req, _ := http.NewRequest(http.MethodGet, "/transcripts/gpt-4o", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

			// The replayed frames parse back into the original events.
			reader := sse.NewReader(resp.Body)
			var types []string
			var sawDone bool
			for {
				ev, err := reader.Next()
				Expect(err).NotTo(HaveOccurred())
				if ev == nil {
					break
				}
				if sse.IsCompletion(ev.Data) {
					sawDone = true
					continue
				}
				types = append(types, ev.Type)
			}

			Expect(types).To(Equal([]string{"response.created", "response.output_text.delta"}))
			Expect(sawDone).To(BeTrue())
		})

		It("404s for an unknown transcript", func() {
			req, _ := http.NewRequest(http.MethodGet, "/transcripts/nope", nil)
			resp, err := server.App().Test(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("POST /responses", func() {
		It("selects the transcript by model name", func() {
			body := strings.NewReader(`{"model":"gpt-4o","stream":true}`)
			req, _ := http.NewRequest(http.MethodPost, "/responses", body)
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			raw, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring("response.created"))
			Expect(string(raw)).To(ContainSubstring("[DONE]"))
		})

		It("rejects non-streaming requests", func() {
			body := strings.NewReader(`{"model":"gpt-4o"}`)
			req, _ := http.NewRequest(http.MethodPost, "/responses", body)
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.App().Test(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("404s when no transcript matches the model", func() {
			body := strings.NewReader(`{"model":"missing","stream":true}`)
			req, _ := http.NewRequest(http.MethodPost, "/responses", body)
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.App().Test(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("directory watching", func() {
		It("picks up newly added transcripts", func() {
			writeTranscript(dir, "o4-mini", testTranscript)

			Eventually(server.Names, 5*time.Second, 50*time.Millisecond).
				Should(ConsistOf("gpt-4o", "o4-mini"))
		})

		It("drops removed transcripts", func() {
			Expect(os.Remove(filepath.Join(dir, "gpt-4o.sse"))).To(Succeed())

			Eventually(server.Names, 5*time.Second, 50*time.Millisecond).
				Should(BeEmpty())
		})
	})
})
