package project

import (
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type nameArgs struct {
	Name string `json:"name" description:"The name of the project"`
}

type createArgs struct {
	Name        string `json:"name" description:"The name of the project (e.g. Personal Assistant)"`
	Description string `json:"description" description:"A brief description of what the project is about"`
}

type listArgs struct {
	StatusFilter *string `json:"status_filter,omitempty" enum:"all,planning,in_progress,paused,completed" description:"Filter by status. Defaults to all."`
}

type statusArgs struct {
	Name   string `json:"name" description:"The name of the project"`
	Status string `json:"status" enum:"planning,in_progress,paused,completed" description:"The new status"`
}

type featureArgs struct {
	Name    string `json:"name" description:"The name of the project"`
	Feature string `json:"feature" description:"The feature text"`
}

type updateFeatureArgs struct {
	Name       string `json:"name" description:"The name of the project"`
	OldFeature string `json:"old_feature" description:"The current feature text to find"`
	NewFeature string `json:"new_feature" description:"The new feature text"`
}

type addMilestoneArgs struct {
	Name          string  `json:"name" description:"The name of the project"`
	MilestoneName string  `json:"milestone_name" description:"The milestone name (e.g. Backend API)"`
	Status        *string `json:"status,omitempty" enum:"pending,completed" description:"pending (default) or completed"`
	CompletedDate *string `json:"completed_date,omitempty" description:"Completion date (YYYY-MM-DD) when completed"`
}

type milestoneArgs struct {
	Name          string  `json:"name" description:"The name of the project"`
	MilestoneName string  `json:"milestone_name" description:"The milestone name, matched ignoring case"`
	CompletedDate *string `json:"completed_date,omitempty" description:"Completion date (YYYY-MM-DD). Defaults to today."`
}

type addNoteArgs struct {
	Name    string  `json:"name" description:"The name of the project"`
	Content string  `json:"content" description:"The note content (e.g. Fixed async issue)"`
	Date    *string `json:"date,omitempty" description:"Optional date (YYYY-MM-DD). Defaults to today."`
}

type noteArgs struct {
	Name    string `json:"name" description:"The name of the project"`
	Content string `json:"content" description:"The note content to remove, matched ignoring case"`
}

type updateNoteArgs struct {
	Name       string `json:"name" description:"The name of the project"`
	OldContent string `json:"old_content" description:"The current note content to find"`
	NewContent string `json:"new_content" description:"The new content; the note keeps its date"`
}

type challengeArgs struct {
	Name      string `json:"name" description:"The name of the project"`
	Challenge string `json:"challenge" description:"Description of the challenge"`
}

type updateChallengeArgs struct {
	Name         string `json:"name" description:"The name of the project"`
	OldChallenge string `json:"old_challenge" description:"The current challenge text to find"`
	NewChallenge string `json:"new_challenge" description:"The new challenge text"`
}

type techArgs struct {
	Name string `json:"name" description:"The name of the project"`
	Tech string `json:"tech" description:"The technology (e.g. Go, Docker)"`
}

type linkArgs struct {
	Name  string `json:"name" description:"The name of the project"`
	Label string `json:"label" description:"Label for the link (e.g. repo, docs, figma)"`
	URL   string `json:"url" description:"The URL"`
}

type updateLinkArgs struct {
	Name   string `json:"name" description:"The name of the project"`
	Label  string `json:"label" description:"The label of the link to update"`
	NewURL string `json:"new_url" description:"The new URL"`
}

type removeLinkArgs struct {
	Name  string `json:"name" description:"The name of the project"`
	Label string `json:"label" description:"The label of the link to remove"`
}

type stepArgs struct {
	Name string `json:"name" description:"The name of the project"`
	Step string `json:"step" description:"The next step (e.g. Implement background scheduler)"`
}

type updateStepArgs struct {
	Name    string `json:"name" description:"The name of the project"`
	OldStep string `json:"old_step" description:"The current step text to find"`
	NewStep string `json:"new_step" description:"The new step text"`
}

// All returns the project tools in catalog order.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{
		tool.NewTypedTool("create_project", "Create a new project. Status defaults to planning.",
			func(_ *core.ToolContext, a createArgs) (string, error) { return t.CreateProject(a.Name, a.Description) }),
		tool.NewTypedTool("get_projects", "List all projects, optionally filtered by status.",
			func(_ *core.ToolContext, a listArgs) (string, error) { return t.GetProjects(opt(a.StatusFilter)), nil }),
		tool.NewTypedTool("get_project_details",
			"Get full details about a project: description, status, technologies, milestones, features, notes, challenges, next steps and links.",
			func(_ *core.ToolContext, a nameArgs) (string, error) { return t.GetProjectDetails(a.Name), nil }),
		tool.NewTypedTool("update_project_status", "Update the status of a project.",
			func(_ *core.ToolContext, a statusArgs) (string, error) { return t.UpdateProjectStatus(a.Name, a.Status) }),
		tool.NewTypedTool("update_project_description", "Update the description of a project.",
			func(_ *core.ToolContext, a createArgs) (string, error) {
				return t.UpdateProjectDescription(a.Name, a.Description)
			}),
		tool.NewTypedTool("remove_project", "Delete a project entirely.",
			func(_ *core.ToolContext, a nameArgs) (string, error) { return t.RemoveProject(a.Name) }),

		tool.NewTypedTool("add_milestone", "Add a new milestone to a project.",
			func(_ *core.ToolContext, a addMilestoneArgs) (string, error) {
				return t.AddMilestone(a.Name, a.MilestoneName, opt(a.Status), opt(a.CompletedDate))
			}),
		tool.NewTypedTool("complete_milestone", "Mark a milestone as completed.",
			func(_ *core.ToolContext, a milestoneArgs) (string, error) {
				return t.CompleteMilestone(a.Name, a.MilestoneName, opt(a.CompletedDate))
			}),
		tool.NewTypedTool("remove_milestone", "Remove a milestone from the project.",
			func(_ *core.ToolContext, a milestoneArgs) (string, error) { return t.RemoveMilestone(a.Name, a.MilestoneName) }),

		tool.NewTypedTool("add_technology", "Add a technology to the project's tech stack.",
			func(_ *core.ToolContext, a techArgs) (string, error) { return t.AddTechnology(a.Name, a.Tech) }),
		tool.NewTypedTool("remove_technology", "Remove a technology from the project's tech stack.",
			func(_ *core.ToolContext, a techArgs) (string, error) { return t.RemoveTechnology(a.Name, a.Tech) }),

		tool.NewTypedTool("add_feature", "Add a feature to the project.",
			func(_ *core.ToolContext, a featureArgs) (string, error) { return t.AddFeature(a.Name, a.Feature) }),
		tool.NewTypedTool("update_feature", "Update an existing feature's description.",
			func(_ *core.ToolContext, a updateFeatureArgs) (string, error) {
				return t.UpdateFeature(a.Name, a.OldFeature, a.NewFeature)
			}),
		tool.NewTypedTool("remove_feature", "Remove a feature from the project.",
			func(_ *core.ToolContext, a featureArgs) (string, error) { return t.RemoveFeature(a.Name, a.Feature) }),

		tool.NewTypedTool("add_note", "Add a progress note to the project.",
			func(_ *core.ToolContext, a addNoteArgs) (string, error) { return t.AddNote(a.Name, a.Content, opt(a.Date)) }),
		tool.NewTypedTool("update_note", "Update an existing note's content (keeps the original date).",
			func(_ *core.ToolContext, a updateNoteArgs) (string, error) {
				return t.UpdateNote(a.Name, a.OldContent, a.NewContent)
			}),
		tool.NewTypedTool("remove_note", "Remove a note from the project by matching its content.",
			func(_ *core.ToolContext, a noteArgs) (string, error) { return t.RemoveNote(a.Name, a.Content) }),

		tool.NewTypedTool("add_challenge", "Document a challenge faced in the project.",
			func(_ *core.ToolContext, a challengeArgs) (string, error) { return t.AddChallenge(a.Name, a.Challenge) }),
		tool.NewTypedTool("update_challenge", "Update an existing challenge's description.",
			func(_ *core.ToolContext, a updateChallengeArgs) (string, error) {
				return t.UpdateChallenge(a.Name, a.OldChallenge, a.NewChallenge)
			}),
		tool.NewTypedTool("remove_challenge", "Remove a challenge from the project.",
			func(_ *core.ToolContext, a challengeArgs) (string, error) { return t.RemoveChallenge(a.Name, a.Challenge) }),

		tool.NewTypedTool("add_next_step", "Add a planned next step for the project.",
			func(_ *core.ToolContext, a stepArgs) (string, error) { return t.AddNextStep(a.Name, a.Step) }),
		tool.NewTypedTool("update_next_step", "Update an existing next step's description.",
			func(_ *core.ToolContext, a updateStepArgs) (string, error) {
				return t.UpdateNextStep(a.Name, a.OldStep, a.NewStep)
			}),
		tool.NewTypedTool("remove_next_step", "Remove a next step from the project.",
			func(_ *core.ToolContext, a stepArgs) (string, error) { return t.RemoveNextStep(a.Name, a.Step) }),

		tool.NewTypedTool("add_link", "Add a reference link to the project.",
			func(_ *core.ToolContext, a linkArgs) (string, error) { return t.AddLink(a.Name, a.Label, a.URL) }),
		tool.NewTypedTool("update_link", "Update an existing link's URL.",
			func(_ *core.ToolContext, a updateLinkArgs) (string, error) { return t.UpdateLink(a.Name, a.Label, a.NewURL) }),
		tool.NewTypedTool("remove_link", "Remove a link from the project.",
			func(_ *core.ToolContext, a removeLinkArgs) (string, error) { return t.RemoveLink(a.Name, a.Label) }),
	}
}

func opt(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
