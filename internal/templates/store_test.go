package templates_test

import (
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/templates"
)

var _ = ginkgo.Describe("Store", func() {
	var (
		dir   string
		path  string
		store *templates.Store
	)

	ginkgo.BeforeEach(func() {
		dir = ginkgo.GinkgoT().TempDir()
		path = filepath.Join(dir, "config", "templates.json")
		store = templates.NewStore(path, nil)
	})

	ginkgo.It("should return an empty collection when the file does not exist", func() {
		loaded, err := store.Templates()

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(loaded).To(gomega.BeEmpty())
		gomega.Expect(store.Exists()).To(gomega.BeFalse())
	})

	ginkgo.It("should read back what it saved", func() {
		// Given
		original := mustParse(`{
			"base": {"enabled": false, "settings": {"region": "us-east-1", "retries": 3, "mfa": true, "unset": null}},
			"dev": {"extends": "base", "settings": {"role_arn": "arn:aws:iam::123456789012:role/dev"}}
		}`)

		// When
		gomega.Expect(store.Save(original)).To(gomega.Succeed())
		loaded, err := store.Templates()

		// Then
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(loaded).To(gomega.Equal(original))
		gomega.Expect(path).To(gomega.BeARegularFile())
	})

	ginkgo.It("should write the file with owner-only permissions", func() {
		gomega.Expect(store.Save(templates.Templates{})).To(gomega.Succeed())

		info, err := os.Stat(path)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(info.Mode().Perm()).To(gomega.Equal(os.FileMode(0o600)))
	})

	ginkgo.It("should name the file when it cannot be parsed", func() {
		gomega.Expect(os.MkdirAll(filepath.Dir(path), 0o750)).To(gomega.Succeed())
		gomega.Expect(os.WriteFile(path, []byte("not json"), 0o600)).To(gomega.Succeed())

		_, err := store.Templates()

		gomega.Expect(err).To(gomega.HaveOccurred())
		appErr := core.AsError(err)
		gomega.Expect(appErr.Status).To(gomega.Equal(1))
		gomega.Expect(appErr.Context).To(gomega.ConsistOf("Could not parse the templates file, " + path + "."))
	})

	ginkgo.It("should name the file when it cannot be opened", func() {
		gomega.Expect(os.MkdirAll(path, 0o750)).To(gomega.Succeed())

		_, err := store.Profiles()

		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should resolve profiles from the file", func() {
		gomega.Expect(store.Save(mustParse(`{
			"a": {"settings": {"k1": "1"}},
			"b": {"extends": "a", "settings": {"k2": "2"}}
		}`))).To(gomega.Succeed())

		profiles, err := store.Profiles()

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(profiles.Names()).To(gomega.Equal([]string{"a", "b"}))
		gomega.Expect(profiles["b"].Settings).To(gomega.Equal(map[string]string{"k1": "1", "k2": "2"}))
		gomega.Expect(profiles["b"].Keys()).To(gomega.Equal([]string{"k1", "k2"}))
	})

	ginkgo.It("should add the file path to resolution errors", func() {
		gomega.Expect(store.Save(mustParse(`{"c": {"extends": "missing", "settings": {}}}`))).To(gomega.Succeed())

		_, err := store.Profiles()

		gomega.Expect(err).To(gomega.HaveOccurred())
		appErr := core.AsError(err)
		gomega.Expect(appErr.Message).To(gomega.ContainSubstring("missing"))
		gomega.Expect(appErr.Context).To(gomega.ConsistOf("Could not process the templates in, " + path + "."))
	})
})
