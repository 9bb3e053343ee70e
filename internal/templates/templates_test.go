package templates_test

import (
	"encoding/json"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/templates"
)

func mustParse(document string) templates.Templates {
	parsed, err := templates.Parse(strings.NewReader(document))
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return parsed
}

var _ = ginkgo.Describe("Templates", func() {
	ginkgo.Describe("Parse", func() {
		ginkgo.It("should default enabled to true", func() {
			parsed := mustParse(`{"a": {"settings": {}}, "b": {"enabled": false, "settings": {}}}`)

			gomega.Expect(parsed["a"].Enabled).To(gomega.BeTrue())
			gomega.Expect(parsed["b"].Enabled).To(gomega.BeFalse())
		})

		ginkgo.It("should accept a null extends", func() {
			parsed := mustParse(`{"a": {"extends": null, "settings": {"region": "us-east-1"}}}`)

			gomega.Expect(parsed["a"].Extends).To(gomega.BeEmpty())
		})

		ginkgo.It("should return an empty collection for an empty object", func() {
			gomega.Expect(mustParse(`{}`)).To(gomega.BeEmpty())
		})

		ginkgo.It("should fail with status 1 for malformed JSON", func() {
			_, err := templates.Parse(strings.NewReader(`{"a": `))

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr := core.AsError(err)
			gomega.Expect(appErr.Status).To(gomega.Equal(1))
			gomega.Expect(appErr.Message).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("should allow trailing whitespace", func() {
			gomega.Expect(mustParse("{\"a\": {\"settings\": {}}}\n\n")).To(gomega.HaveKey("a"))
		})

		ginkgo.DescribeTable("should reject documents that are not a single collection of templates",
			func(document string) {
				parsed, err := templates.Parse(strings.NewReader(document))

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(parsed).To(gomega.BeNil())
				appErr := core.AsError(err)
				gomega.Expect(appErr.Status).To(gomega.Equal(1))
				gomega.Expect(appErr.Message).NotTo(gomega.BeEmpty())
			},
			ginkgo.Entry("stray closing bracket", `{"a": {"settings": {}}} ]`),
			ginkgo.Entry("second object", `{} {"x": 1}`),
			ginkgo.Entry("null template", `{"a": null}`),
		)
	})

	ginkgo.Describe("Resolve", func() {
		ginkgo.It("should let the nearest template win and include every ancestor setting", func() {
			// Given
			parsed := mustParse(`{
				"a": {"settings": {"shared": "from-a", "only_a": "a", "deep": "from-a"}},
				"b": {"extends": "a", "settings": {"shared": "from-b", "only_b": "b", "deep": "from-b"}},
				"c": {"extends": "b", "settings": {"shared": "from-c", "only_c": "c"}}
			}`)

			// When
			profile, err := parsed.Resolve("c")

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(profile.Name).To(gomega.Equal("c"))
			gomega.Expect(profile.Settings).To(gomega.Equal(map[string]string{
				"shared": "from-c",
				"deep":   "from-b",
				"only_a": "a",
				"only_b": "b",
				"only_c": "c",
			}))
		})

		ginkgo.It("should convert scalars to their string form", func() {
			parsed := mustParse(`{"a": {"settings": {
				"flag": true, "off": false, "empty": null, "count": 3, "ratio": 1.50, "big": 12345678901234567890, "text": "x"
			}}}`)

			profile, err := parsed.Resolve("a")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(profile.Settings).To(gomega.Equal(map[string]string{
				"flag":  "true",
				"off":   "false",
				"empty": "",
				"count": "3",
				"ratio": "1.50",
				"big":   "12345678901234567890",
				"text":  "x",
			}))
		})

		ginkgo.It("should merge a child with its parent", func() {
			parsed := mustParse(`{"a": {"settings": {"k1": "1"}}, "b": {"extends": "a", "settings": {"k2": "2"}}}`)

			profile, err := parsed.Resolve("b")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(profile.Settings).To(gomega.Equal(map[string]string{"k1": "1", "k2": "2"}))
		})

		ginkgo.It("should name the template and the missing ancestor", func() {
			parsed := mustParse(`{"c": {"extends": "missing", "settings": {}}}`)

			_, err := parsed.Resolve("c")

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr := core.AsError(err)
			gomega.Expect(appErr.Status).To(gomega.Equal(1))
			gomega.Expect(appErr.Message).To(gomega.ContainSubstring("c"))
			gomega.Expect(appErr.Message).To(gomega.ContainSubstring("missing"))
			gomega.Expect(appErr.Context).To(gomega.BeEmpty())
		})

		ginkgo.It("should fail for an unknown template name", func() {
			_, err := mustParse(`{}`).Resolve("nope")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("nope"))
		})

		ginkgo.DescribeTable("should stop on a cycle",
			func(document, start string) {
				parsed := mustParse(document)
				done := make(chan error, 1)

				go func() {
					_, err := parsed.Resolve(start)
					done <- err
				}()

				var err error
				gomega.Eventually(done).Should(gomega.Receive(&err))
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("cycle"))
			},
			ginkgo.Entry("self reference", `{"a": {"extends": "a", "settings": {}}}`, "a"),
			ginkgo.Entry("two templates", `{"a": {"extends": "b", "settings": {}}, "b": {"extends": "a", "settings": {}}}`, "a"),
			ginkgo.Entry("cycle above the start",
				`{"x": {"extends": "a", "settings": {}}, "a": {"extends": "b", "settings": {}}, "b": {"extends": "a", "settings": {}}}`, "x"),
		)

		ginkgo.It("should reject array values with context naming the key", func() {
			parsed := mustParse(`{"a": {"settings": {"k": [1, 2]}}}`)

			_, err := parsed.Resolve("a")

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr := core.AsError(err)
			gomega.Expect(appErr.Message).To(gomega.Equal("The JSON encoded values of array or object type are not supported."))
			gomega.Expect(appErr.Context).To(gomega.Equal([]string{
				"Could not convert the value of the setting, k.",
				"Could not process the profile template, a.",
			}))
		})

		ginkgo.It("should reject object values found in an ancestor", func() {
			parsed := mustParse(`{"a": {"settings": {"k": {"nested": true}}}, "b": {"extends": "a", "settings": {}}}`)

			_, err := parsed.Resolve("b")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(core.AsError(err).Context).To(gomega.ContainElement("Could not process the profile template, a."))
		})

		ginkgo.It("should not read an ancestor value when the child already set the key", func() {
			parsed := mustParse(`{"a": {"settings": {"k": [1]}}, "b": {"extends": "a", "settings": {"k": "child"}}}`)

			profile, err := parsed.Resolve("b")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(profile.Settings).To(gomega.HaveKeyWithValue("k", "child"))
		})
	})

	ginkgo.Describe("Profiles", func() {
		ginkgo.It("should skip disabled templates but allow extending them", func() {
			parsed := mustParse(`{
				"base": {"enabled": false, "settings": {"region": "us-east-1"}},
				"dev": {"extends": "base", "settings": {"role_arn": "arn:dev"}}
			}`)

			profiles, err := parsed.Profiles()

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(profiles.Names()).To(gomega.Equal([]string{"dev"}))
			gomega.Expect(profiles["dev"].Settings).To(gomega.Equal(map[string]string{
				"region":   "us-east-1",
				"role_arn": "arn:dev",
			}))
		})

		ginkgo.It("should report the first failing template by name", func() {
			parsed := mustParse(`{
				"b": {"extends": "gone", "settings": {}},
				"a": {"extends": "missing", "settings": {}}
			}`)

			_, err := parsed.Profiles()

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(core.AsError(err).Message).To(gomega.ContainSubstring("missing"))
		})
	})

	ginkgo.Describe("Merge", func() {
		ginkgo.It("should prefer remote templates on collision", func() {
			local := mustParse(`{"a": {"settings": {"k": "local"}}, "b": {"settings": {}}}`)
			remote := mustParse(`{"a": {"settings": {"k": "remote"}}, "c": {"settings": {}}}`)

			merged := local.Merge(remote)

			gomega.Expect(merged.Names()).To(gomega.Equal([]string{"a", "b", "c"}))
			gomega.Expect(merged["a"].Settings).To(gomega.HaveKeyWithValue("k", "remote"))
			gomega.Expect(local["a"].Settings).To(gomega.HaveKeyWithValue("k", "local"))
		})
	})

	ginkgo.Describe("JSON encoding", func() {
		ginkgo.It("should write enabled, extends, and settings", func() {
			data, err := json.Marshal(templates.Template{Enabled: true, Settings: map[string]any{"k": "v"}})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(string(data)).To(gomega.MatchJSON(`{"enabled": true, "extends": null, "settings": {"k": "v"}}`))
		})

		ginkgo.It("should keep number text when re-encoded", func() {
			parsed := mustParse(`{"a": {"settings": {"ratio": 1.50}}}`)

			data, err := json.Marshal(parsed)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(string(data)).To(gomega.ContainSubstring(`"ratio":1.50`))
		})
	})
})
