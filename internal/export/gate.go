package export

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"eventexport/internal/constants"
	"eventexport/internal/plan"
	"eventexport/internal/workspace"
)

type DomainResolver interface {
	GetDomain(ctx context.Context, workspaceID, slug string) (*workspace.Domain, error)
}

type LinkResolver interface {
	GetLink(ctx context.Context, workspaceID, domain, key string) (*workspace.Link, error)
}

type FolderAccess interface {
	CheckFolderPermission(ctx context.Context, workspaceID, userID, folderID, permission string) error
	ReadableFolderIDs(ctx context.Context, workspaceID, userID string) ([]string, error)
}

type PlanChecker interface {
	CheckUsage(usage, limit int64) error
	CheckWindow(tier plan.Tier, w plan.Window, now time.Time) error
}

// Principal is the authenticated caller of an export.
type Principal struct {
	Workspace workspace.Workspace
	Session   workspace.Session
}

// Scope is what a request is allowed to read.
type Scope struct {
	Window plan.Window
	Domain string
	LinkID string

	// FolderID is set when a single folder was authorized. Otherwise
	// FolderIDs lists every folder the caller may read.
	FolderID  string
	FolderIDs []string
}

// Gate runs the authorization checks that must pass before any event data is
// read. Checks run in a fixed order and stop at the first failure: usage,
// domain, link, folder permission, plan date range.
type Gate struct {
	domains DomainResolver
	links   LinkResolver
	folders FolderAccess
	plans   PlanChecker
	now     func() time.Time
}

func NewGate(domains DomainResolver, links LinkResolver, folders FolderAccess, plans PlanChecker) *Gate {
	return &Gate{
		domains: domains,
		links:   links,
		folders: folders,
		plans:   plans,
		now:     time.Now,
	}
}

func (g *Gate) Authorize(ctx context.Context, p Principal, req *Request) (*Scope, error) {
	ws := p.Workspace

	if err := g.plans.CheckUsage(ws.Usage, ws.UsageLimit); err != nil {
		return nil, err
	}

	scope := &Scope{Domain: req.Domain}

	switch {
	case req.SingleLink():
		if err := g.resolveDomain(ctx, ws.ID, req.Domain); err != nil {
			return nil, err
		}
		link, err := g.links.GetLink(ctx, ws.ID, req.Domain, req.Key)
		if err != nil {
			return nil, err
		}
		scope.LinkID = link.ID

		folderID := link.FolderID
		if folderID == "" {
			folderID = req.FolderID
		}
		if err := g.authorizeFolder(ctx, p, folderID, scope); err != nil {
			return nil, err
		}

	case req.FolderID != "":
		if err := g.resolveDomain(ctx, ws.ID, req.Domain); err != nil {
			return nil, err
		}
		if err := g.authorizeFolder(ctx, p, req.FolderID, scope); err != nil {
			return nil, err
		}

	default:
		folderIDs, err := g.resolveDomainAndFolders(ctx, p, req.Domain)
		if err != nil {
			return nil, err
		}
		scope.FolderIDs = folderIDs
	}

	now := g.now()
	scope.Window = plan.ResolveWindow(plan.WindowParams{
		Interval:          req.Interval,
		Start:             req.Start,
		End:               req.End,
		Location:          req.Location,
		DataAvailableFrom: ws.CreatedAt,
		Now:               now,
	})
	if err := g.plans.CheckWindow(plan.Tier(ws.Plan), scope.Window, now); err != nil {
		return nil, err
	}

	return scope, nil
}

func (g *Gate) resolveDomain(ctx context.Context, workspaceID, domain string) error {
	if domain == "" {
		return nil
	}
	_, err := g.domains.GetDomain(ctx, workspaceID, domain)
	return err
}

func (g *Gate) authorizeFolder(ctx context.Context, p Principal, folderID string, scope *Scope) error {
	if folderID == "" {
		ids, err := g.folders.ReadableFolderIDs(ctx, p.Workspace.ID, p.Session.UserID)
		if err != nil {
			return err
		}
		scope.FolderIDs = ids
		return nil
	}

	err := g.folders.CheckFolderPermission(ctx, p.Workspace.ID, p.Session.UserID, folderID, constants.PermissionFoldersRead)
	if err != nil {
		return err
	}
	scope.FolderID = folderID
	return nil
}

// resolveDomainAndFolders runs the two independent lookups concurrently. A
// domain failure is reported ahead of a folder failure, so neither lookup may
// cancel the other.
func (g *Gate) resolveDomainAndFolders(ctx context.Context, p Principal, domain string) ([]string, error) {
	var (
		domainErr error
		folderErr error
		folderIDs []string
		eg        errgroup.Group
	)

	eg.Go(func() error {
		domainErr = g.resolveDomain(ctx, p.Workspace.ID, domain)
		return domainErr
	})
	eg.Go(func() error {
		folderIDs, folderErr = g.folders.ReadableFolderIDs(ctx, p.Workspace.ID, p.Session.UserID)
		return folderErr
	})
	_ = eg.Wait()

	if domainErr != nil {
		return nil, domainErr
	}
	if folderErr != nil {
		return nil, folderErr
	}
	return folderIDs, nil
}
