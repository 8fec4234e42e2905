// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

//go:build integration

package lifecycle_test

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/lifecycle"
	"github.com/ringdex/ringdex/internal/ring"
	"github.com/ringdex/ringdex/internal/store"
	"github.com/ringdex/ringdex/pkg/errutil"
)

// failingSites fails the update of one site, after the others were written.
type failingSites struct {
	ring.SiteRepository
	failID ulid.ULID
}

func (f failingSites) Update(ctx context.Context, tx store.Tx, s *ring.Site) error {
	if s.ID == f.failID {
		return errors.New("injected failure")
	}
	return f.SiteRepository.Update(ctx, tx, s)
}

var _ = Describe("Cascading deletes", func() {
	var coord *lifecycle.Coordinator

	BeforeEach(func() {
		var err error
		coord, err = lifecycle.NewCoordinator(env.Users, env.Webrings, env.Sites, env.Transactor)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("DeleteWebring", func() {
		It("stamps the webring and its sites with one instant", func() {
			owner := createUser("ringowner")
			w := createWebring("cascade_ring", owner)
			s1 := createSite("one", w)
			s2 := createSite("two", w)
			at := instant(time.Now().Add(-time.Minute))

			_, err := coord.DeleteWebring(env.ctx, w.ID.String(), lifecycle.DeleteOptions{DeletedAt: at})
			Expect(err).NotTo(HaveOccurred())

			for _, row := range [][2]string{
				{"webrings", w.ID.String()},
				{"sites", s1.ID.String()},
				{"sites", s2.ID.String()},
			} {
				got := deletedAt(row[0], row[1])
				Expect(got).NotTo(BeNil())
				Expect(*got).To(BeTemporally("==", at))
			}

			_, err = env.Sites.GetByID(env.ctx, nil, s1.ID)
			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})

		It("rolls every row back when one site fails", func() {
			owner := createUser("rollbackowner")
			w := createWebring("rollback_ring", owner)
			s1 := createSite("first", w)
			s2 := createSite("second", w)

			failing, err := lifecycle.NewCoordinator(env.Users, env.Webrings,
				failingSites{SiteRepository: env.Sites, failID: s2.ID}, env.Transactor)
			Expect(err).NotTo(HaveOccurred())

			_, err = failing.DeleteWebring(env.ctx, w.ID.String(), lifecycle.DeleteOptions{})
			Expect(err).To(HaveOccurred())

			Expect(deletedAt("sites", s1.ID.String())).To(BeNil())
			Expect(deletedAt("sites", s2.ID.String())).To(BeNil())
			Expect(deletedAt("webrings", w.ID.String())).To(BeNil())
		})

		It("frees the webring url for reuse", func() {
			owner := createUser("urlowner")
			w := createWebring("reused_ring", owner)

			_, err := coord.DeleteWebring(env.ctx, w.ID.String(), lifecycle.DeleteOptions{})
			Expect(err).NotTo(HaveOccurred())

			again := createWebring("reused_ring", owner)
			Expect(again.ID).NotTo(Equal(w.ID))
		})
	})

	Describe("DeleteUser", func() {
		It("cascades created webrings and leaves moderated ones", func() {
			alice := createUser("alice")
			bob := createUser("bob")
			owned := createWebring("alice_ring", alice)
			ownedSite := createSite("alicesite", owned)
			moderated := createWebring("bob_ring", bob)
			moderatedSite := createSite("bobsite", moderated)
			Expect(env.Webrings.AddModerator(env.ctx, nil, moderated.ID, alice.ID)).To(Succeed())
			at := instant(time.Now())

			_, err := coord.DeleteUser(env.ctx, alice.ID.String(), lifecycle.DeleteOptions{DeletedAt: at})
			Expect(err).NotTo(HaveOccurred())

			Expect(*deletedAt("users", alice.ID.String())).To(BeTemporally("==", at))
			Expect(*deletedAt("webrings", owned.ID.String())).To(BeTemporally("==", at))
			Expect(*deletedAt("sites", ownedSite.ID.String())).To(BeTemporally("==", at))

			Expect(deletedAt("users", bob.ID.String())).To(BeNil())
			Expect(deletedAt("webrings", moderated.ID.String())).To(BeNil())
			Expect(deletedAt("sites", moderatedSite.ID.String())).To(BeNil())

			_, err = coord.DeleteUser(env.ctx, alice.ID.String(), lifecycle.DeleteOptions{})
			Expect(errutil.Code(err)).To(Equal(auth.CodeUserNotFound))
		})

		It("writes through a caller transaction without committing it", func() {
			carol := createUser("carol")
			w := createWebring("carol_ring", carol)

			tx, err := env.pool.Begin(env.ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = coord.DeleteUser(env.ctx, carol.ID.String(), lifecycle.DeleteOptions{Tx: tx})
			Expect(err).NotTo(HaveOccurred())

			Expect(deletedAt("users", carol.ID.String())).To(BeNil(), "outside the open transaction nothing changed yet")
			Expect(tx.Rollback(env.ctx)).To(Succeed())

			Expect(deletedAt("users", carol.ID.String())).To(BeNil())
			Expect(deletedAt("webrings", w.ID.String())).To(BeNil())
		})
	})
})
