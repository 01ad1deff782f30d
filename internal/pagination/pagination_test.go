package pagination_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal/pagination"
)

type item struct {
	ID    string
	Label string
}

func buildItems(n int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{ID: fmt.Sprintf("id-%02d", i), Label: fmt.Sprintf("label-%02d", i)}
	}
	return items
}

var _ = Describe("Paginate", func() {
	It("returns at most limit items and the full filtered total", func() {
		page := pagination.Paginate(buildItems(25), pagination.Params{Page: 1, Limit: 10})

		Expect(page.Items).To(HaveLen(10))
		Expect(page.Total).To(Equal(25))
		Expect(page.Page).To(Equal(1))
		Expect(page.Limit).To(Equal(10))
	})

	It("slices successive pages without overlap", func() {
		items := buildItems(25)

		first := pagination.Paginate(items, pagination.Params{Page: 1, Limit: 10})
		second := pagination.Paginate(items, pagination.Params{Page: 2, Limit: 10})
		third := pagination.Paginate(items, pagination.Params{Page: 3, Limit: 10})

		Expect(first.Items[0].ID).To(Equal("id-00"))
		Expect(second.Items[0].ID).To(Equal("id-10"))
		Expect(third.Items).To(HaveLen(5))
	})

	It("returns empty items with the full total for an out-of-range page", func() {
		page := pagination.Paginate(buildItems(5), pagination.Params{Page: 9, Limit: 10})

		Expect(page.Items).To(BeEmpty())
		Expect(page.Total).To(Equal(5))
	})

	It("normalizes page and limit below one", func() {
		page := pagination.Paginate(buildItems(3), pagination.Params{Page: 0, Limit: 0})

		Expect(page.Page).To(Equal(1))
		Expect(page.Limit).To(Equal(1))
		Expect(page.Items).To(HaveLen(1))
	})

	It("applies predicates as a conjunction before slicing", func() {
		items := []item{
			{ID: "a", Label: "alpha"},
			{ID: "b", Label: "beta"},
			{ID: "c", Label: "alpine"},
		}

		page := pagination.Paginate(items, pagination.Params{Page: 1, Limit: 10},
			pagination.MatchSearch("al", func(i item) string { return i.Label }),
			pagination.MatchID("c", func(i item) string { return i.ID }),
		)

		Expect(page.Items).To(HaveLen(1))
		Expect(page.Items[0].ID).To(Equal("c"))
		Expect(page.Total).To(Equal(1))
	})

	Describe("MatchSearch", func() {
		It("matches case-insensitively and treats an empty term as match-all", func() {
			contains := pagination.MatchSearch[item]("ALP", func(i item) string { return i.Label })
			all := pagination.MatchSearch[item]("", func(i item) string { return i.Label })

			Expect(contains(item{Label: "alpha"})).To(BeTrue())
			Expect(contains(item{Label: "beta"})).To(BeFalse())
			Expect(all(item{Label: "anything"})).To(BeTrue())
		})
	})

	Describe("MatchID", func() {
		It("matches exactly and treats an empty id as match-all", func() {
			exact := pagination.MatchID[item]("s1", func(i item) string { return i.ID })
			all := pagination.MatchID[item]("", func(i item) string { return i.ID })

			Expect(exact(item{ID: "s1"})).To(BeTrue())
			Expect(exact(item{ID: "s10"})).To(BeFalse())
			Expect(all(item{ID: "whatever"})).To(BeTrue())
		})
	})
})
