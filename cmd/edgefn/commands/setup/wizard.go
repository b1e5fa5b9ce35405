package setup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/catalystcommunity/edgefn/internal/cloudmanager"
	"github.com/catalystcommunity/edgefn/internal/config"
	"github.com/catalystcommunity/edgefn/internal/ims"
	"github.com/catalystcommunity/edgefn/internal/selection"
	"github.com/catalystcommunity/edgefn/internal/session"
)

// OrgIDHelpURL explains where to find an organization ID
const OrgIDHelpURL = "https://experienceleague.adobe.com/en/docs/core-services/interface/administration/organizations#concept_EA8AEE5B02CF46ACBDAD6A8508646255"

// CloudManager is the part of the Cloud Manager API the wizard walks
type CloudManager interface {
	ListPrograms(ctx context.Context) ([]cloudmanager.Program, error)
	ListEnvironments(ctx context.Context, programID string) ([]cloudmanager.Environment, error)
	ListSites(ctx context.Context, programID string) ([]cloudmanager.Site, error)
}

// Organizations lists the IMS organizations of a token's user
type Organizations interface {
	Organizations(ctx context.Context, accessToken string) ([]ims.Organization, error)
}

// CloudManagerFactory creates an API client for one organization
type CloudManagerFactory func(creds *ims.Credentials, orgID string) CloudManager

// Wizard walks organization, program and environment or site, then stores
// the selection. Nothing is stored unless the walk completes.
type Wizard struct {
	session         *session.Session
	orgs            Organizations
	newCloudManager CloudManagerFactory

	cloudManager CloudManager
	orgID        string
	programs     []cloudmanager.Program
	environments []cloudmanager.Environment
	sites        []cloudmanager.Site
}

// WizardOption configures a Wizard
type WizardOption func(*Wizard)

// WithOrganizations replaces the IMS organization lookup
func WithOrganizations(orgs Organizations) WizardOption {
	return func(w *Wizard) {
		w.orgs = orgs
	}
}

// WithCloudManagerFactory replaces the Cloud Manager client constructor
func WithCloudManagerFactory(f CloudManagerFactory) WizardOption {
	return func(w *Wizard) {
		w.newCloudManager = f
	}
}

// NewWizard creates a setup wizard bound to s
func NewWizard(s *session.Session, opts ...WizardOption) *Wizard {
	w := &Wizard{
		session: s,
		orgs:    s.IMS,
		newCloudManager: func(creds *ims.Credentials, orgID string) CloudManager {
			return s.CloudManager(creds, orgID)
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes the setup wizard
func (w *Wizard) Run(ctx context.Context) error {
	defer w.session.StopSpinner()

	out := w.session.UI
	ask := w.session.Prompt
	store := w.session.Config

	out.Info("Setup the CLI configuration necessary to use the Edge Functions commands.")

	storeLocal, err := ask.Confirm(ctx, "Do you want to store the information you enter in this setup procedure locally?", false)
	if err != nil {
		return err
	}

	w.orgID, err = w.selectOrganization(ctx)
	if err != nil {
		return err
	}

	program, ok, err := w.selectProgram(ctx)
	if err != nil || !ok {
		return err
	}

	edgeDelivery, err := ask.Confirm(ctx, "Do you want to use an Edge Delivery site?", store.GetBool(config.KeyEdgeDelivery))
	if err != nil {
		return err
	}

	var targetID, targetName, kind string
	if edgeDelivery {
		kind = "site"
		site, found, err := w.selectSite(ctx, program.ID)
		if err != nil {
			return err
		}
		if !found {
			return w.nothingFound(program.ID, "No Edge Delivery site found for the selected program.")
		}
		targetID, targetName = site.ID, site.Name
	} else {
		kind = "environment"
		env, found, err := w.selectEnvironment(ctx, program.ID)
		if err != nil {
			return err
		}
		if !found {
			return w.nothingFound(program.ID, "No program or environment found for the selected organization.")
		}
		targetID, targetName = env.ID, env.Name
	}

	out.Success(fmt.Sprintf("Selected program %s and %s %s: %s - %s", program.ID, kind, targetID, program.Name, targetName))

	values := []struct {
		key   string
		value any
	}{
		{config.KeyProgram, program.ID},
		{config.KeyEdgeDelivery, edgeDelivery},
		{config.KeyEnvironment, targetID},
		{config.KeyProgramName, program.Name},
		{config.KeyEnvironmentName, targetName},
	}
	if w.orgID != "" {
		if err := store.Set(config.KeyOrg, w.orgID, storeLocal); err != nil {
			return fmt.Errorf("failed to save %s: %w", config.KeyOrg, err)
		}
	}
	for _, v := range values {
		if err := store.Set(v.key, v.value, storeLocal); err != nil {
			return fmt.Errorf("failed to save %s: %w", v.key, err)
		}
	}

	out.Info("Setup complete. Use 'edgefn --help' to see the available commands.")
	return nil
}

// nothingFound ends the run when the chosen program has no environment or site.
// With a single program there is nothing else to pick, so setup stops quietly.
func (w *Wizard) nothingFound(programID, msg string) error {
	if len(w.programs) == 1 {
		w.session.UI.Error(msg)
		return nil
	}
	return fmt.Errorf("program %s has nothing to select, run setup again and choose a different program", programID)
}

func (w *Wizard) selectOrganization(ctx context.Context) (string, error) {
	out := w.session.UI

	orgs, ok := w.organizations(ctx)
	if !ok {
		return "", nil
	}

	var selected string
	switch len(orgs) {
	case 0:
		manual, err := w.manualOrganizationID(ctx)
		if err != nil {
			return "", err
		}
		selected = manual
	case 1:
		out.Infof("Selected only organization: %s - %s", orgs[0].Name, orgs[0].ID)
		return orgs[0].ID, nil
	default:
		org, _, err := selection.SelectOne(ctx, w.session.Prompt, orgs, selection.Options[ims.Organization]{
			Message: "Please choose an organization (type to filter):",
			Label:   func(o ims.Organization) string { return o.Name + " - " + o.ID },
			Value:   func(o ims.Organization) string { return o.ID },
			Default: w.session.Config.GetString(config.KeyOrg),
		})
		if err != nil {
			return "", err
		}
		selected = org.ID
	}

	out.Infof("Selected organization: %s", selected)
	return selected, nil
}

// organizations returns ok=false when the user's organizations cannot be listed.
// Failures here are not fatal: the stored organization may still be usable.
func (w *Wizard) organizations(ctx context.Context) ([]ims.Organization, bool) {
	creds, err := w.session.TokenAndKey()
	if err != nil {
		if errors.Is(err, ims.ErrContextNotConfigured) {
			w.session.UI.Info("No IMS context found. Please run 'edgefn context login' first.")
		}
		w.session.Logger.Debug("skipping organization lookup", zap.Error(err))
		return nil, false
	}

	orgs, err := w.orgs.Organizations(ctx, creds.AccessToken)
	if err != nil {
		w.session.Logger.Debug("skipping organization lookup", zap.Error(err))
		return nil, false
	}
	return orgs, true
}

func (w *Wizard) manualOrganizationID(ctx context.Context) (string, error) {
	out := w.session.UI
	ask := w.session.Prompt

	out.Warn("Could not find an organization ID automatically.")
	out.Warn("Please enter your organization ID manually.")
	out.Muted("See " + OrgIDHelpURL)

	openLink, err := ask.Confirm(ctx, "Would you like to open the link in your browser?", false)
	if err != nil {
		return "", err
	}
	if openLink {
		if err := out.OpenBrowser(OrgIDHelpURL); err != nil {
			w.session.Logger.Debug("failed to open browser", zap.Error(err))
		}
	}

	return ask.Input(ctx, "Manual organization ID:")
}

func (w *Wizard) withCloudManager() (CloudManager, error) {
	if w.cloudManager != nil {
		return w.cloudManager, nil
	}

	creds, err := w.session.TokenAndKey()
	if err != nil {
		return nil, err
	}
	orgID, err := w.session.OrgID(w.orgID)
	if err != nil {
		return nil, err
	}

	w.cloudManager = w.newCloudManager(creds, orgID)
	return w.cloudManager, nil
}

func (w *Wizard) selectProgram(ctx context.Context) (cloudmanager.Program, bool, error) {
	if len(w.programs) == 0 {
		w.session.StartSpinner("retrieving programs of your organization")
		cm, err := w.withCloudManager()
		if err != nil {
			return cloudmanager.Program{}, false, err
		}
		w.programs, err = cm.ListPrograms(ctx)
		if err != nil {
			return cloudmanager.Program{}, false, err
		}
		w.session.StopSpinner()
	}

	return selection.SelectOne(ctx, w.session.Prompt, w.programs, selection.Options[cloudmanager.Program]{
		Message: "Please choose a program (type to filter):",
		Label:   func(p cloudmanager.Program) string { return p.ID + " - " + p.Name },
		Value:   func(p cloudmanager.Program) string { return p.ID },
		Default: w.session.Config.GetString(config.KeyProgram),
		OnEmpty: func() {
			w.session.UI.Error("No programs found for the selected organization.")
		},
		OnOnly: func(p cloudmanager.Program) {
			w.session.UI.Infof("Selected only program: %s", p.ID)
		},
	})
}

func (w *Wizard) selectEnvironment(ctx context.Context, programID string) (cloudmanager.Environment, bool, error) {
	w.session.StartSpinner(fmt.Sprintf("retrieving environments of program %s", programID))
	cm, err := w.withCloudManager()
	if err != nil {
		return cloudmanager.Environment{}, false, err
	}
	w.environments, err = cm.ListEnvironments(ctx, programID)
	if err != nil {
		return cloudmanager.Environment{}, false, err
	}
	w.session.StopSpinner()

	return selection.SelectOne(ctx, w.session.Prompt, w.environments, selection.Options[cloudmanager.Environment]{
		Message: "Please choose an environment (type to filter):",
		Label: func(e cloudmanager.Environment) string {
			return fmt.Sprintf("%s %s (%s) - %s", e.ID, e.Type, e.Status, e.Name)
		},
		Value:   func(e cloudmanager.Environment) string { return e.ID },
		Default: w.session.Config.GetString(config.KeyEnvironment),
		OnEmpty: func() {
			w.session.UI.Error(fmt.Sprintf("No environments found for program %s", programID))
			w.session.UI.Info("==> Please choose a different program")
		},
		OnOnly: func(e cloudmanager.Environment) {
			w.session.UI.Infof("Selected only environment: %s", e.ID)
		},
	})
}

func (w *Wizard) selectSite(ctx context.Context, programID string) (cloudmanager.Site, bool, error) {
	w.session.StartSpinner(fmt.Sprintf("retrieving sites of program %s", programID))
	cm, err := w.withCloudManager()
	if err != nil {
		return cloudmanager.Site{}, false, err
	}
	w.sites, err = cm.ListSites(ctx, programID)
	if err != nil {
		return cloudmanager.Site{}, false, err
	}
	w.session.StopSpinner()

	return selection.SelectOne(ctx, w.session.Prompt, w.sites, selection.Options[cloudmanager.Site]{
		Message: "Please choose an Edge Delivery site (type to filter):",
		Label:   func(s cloudmanager.Site) string { return s.ID + " - " + s.Name },
		Value:   func(s cloudmanager.Site) string { return s.ID },
		Default: w.session.Config.GetString(config.KeyEnvironment),
		OnEmpty: func() {
			w.session.UI.Error(fmt.Sprintf("No Edge Delivery sites found for program %s", programID))
			w.session.UI.Info("==> Please choose a different program")
		},
		OnOnly: func(s cloudmanager.Site) {
			w.session.UI.Infof("Selected only Edge Delivery site: %s - %s", s.ID, s.Name)
		},
	})
}
