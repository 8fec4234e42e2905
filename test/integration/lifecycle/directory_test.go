// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

//go:build integration

package lifecycle_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/ringdex/ringdex/internal/lifecycle"
	"github.com/ringdex/ringdex/internal/ring"
	"github.com/ringdex/ringdex/pkg/errutil"
)

var _ = Describe("Directory", func() {
	var dir *ring.Directory

	BeforeEach(func() {
		var err error
		dir, err = ring.NewDirectory(env.Webrings, env.Sites, env.Tags, env.Transactor, ring.DefaultLimits())
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates a tagged webring and lists a site in it", func() {
		owner := createUser("dirowner")
		tag, err := dir.CreateTag(env.ctx, "Handmade", owner.ID)
		Expect(err).NotTo(HaveOccurred())

		_, err = dir.CreateTag(env.ctx, "handmade", owner.ID)
		Expect(errutil.Code(err)).To(Equal(ring.CodeTagExists))

		w, err := dir.CreateWebring(env.ctx, ring.WebringInput{
			Name:      "Handmade Web",
			URL:       "handmade_web",
			CreatorID: owner.ID,
			Tags:      []string{"handmade"},
		})
		Expect(err).NotTo(HaveOccurred())

		got, err := env.Webrings.GetByID(env.ctx, nil, w.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.TagIDs).To(ConsistOf(tag.ID))

		site, err := dir.AddSite(env.ctx, ring.SiteInput{
			WebringID: w.ID,
			Name:      "Workshop",
			URL:       "https://workshop.example.org",
			AddedByID: owner.ID,
		})
		Expect(err).NotTo(HaveOccurred())
		sites, err := env.Sites.ListActiveByWebring(env.ctx, nil, w.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(sites).To(HaveLen(1))
		Expect(sites[0].ID).To(Equal(site.ID))
	})

	It("refuses sites for a deleted webring", func() {
		owner := createUser("dirdeleted")
		w := createWebring("dir_deleted_ring", owner)

		coord, err := lifecycle.NewCoordinator(env.Users, env.Webrings, env.Sites, env.Transactor)
		Expect(err).NotTo(HaveOccurred())
		_, err = coord.DeleteWebring(env.ctx, w.ID.String(), lifecycle.DeleteOptions{})
		Expect(err).NotTo(HaveOccurred())

		_, err = dir.AddSite(env.ctx, ring.SiteInput{
			WebringID: w.ID,
			Name:      "Late",
			URL:       "https://late.example.org",
			AddedByID: owner.ID,
		})
		Expect(errutil.Code(err)).To(Equal(ring.CodeWebringNotFound))

		err = dir.AddModerator(env.ctx, w.ID, owner.ID)
		Expect(errutil.Code(err)).To(Equal(ring.CodeWebringNotFound))
	})
})
