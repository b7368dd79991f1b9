package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/morfolab/morfo/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Make sure env fallbacks don't leak into assertions.
		for _, name := range credentials.EnvVars() {
			orig, had := os.LookupEnv(name)
			Expect(os.Unsetenv(name)).To(Succeed())
			if had {
				DeferCleanup(func() { os.Setenv(name, orig) })
			}
		}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewManager", func() {
		It("creates a manager with an override directory", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr).NotTo(BeNil())
			Expect(mgr.GetTarget()).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
		})
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.APIKey).To(BeEmpty())
		})

		It("round-trips a saved credential", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetKey("sk-test-123")).To(Succeed())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.APIKey).To(Equal("sk-test-123"))
		})

		It("writes the file with 0600 permissions", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetKey("sk-test-123")).To(Succeed())

			info, err := os.Stat(mgr.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})
	})

	Describe("GetKey", func() {
		It("returns the stored key", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetKey("sk-stored")).To(Succeed())

			key, err := mgr.GetKey()
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-stored"))
		})

		It("falls back to MORFO_API_KEY when nothing is stored", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(os.Setenv("MORFO_API_KEY", "sk-from-env")).To(Succeed())
			DeferCleanup(func() { os.Unsetenv("MORFO_API_KEY") })

			key, err := mgr.GetKey()
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-from-env"))
		})

		It("prefers the stored key over the environment", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(os.Setenv("MORFO_API_KEY", "sk-from-env")).To(Succeed())
			DeferCleanup(func() { os.Unsetenv("MORFO_API_KEY") })
			Expect(mgr.SetKey("sk-stored")).To(Succeed())

			key, err := mgr.GetKey()
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-stored"))
		})

		It("returns empty when nothing is available", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			key, err := mgr.GetKey()
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("RemoveKey", func() {
		It("clears a stored credential", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.SetKey("sk-stored")).To(Succeed())
			Expect(mgr.RemoveKey()).To(Succeed())

			key, err := mgr.GetKey()
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("Save", func() {
		It("rejects nil credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.Save(nil)).NotTo(Succeed())
		})
	})
})
