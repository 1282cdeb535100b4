package tool

import (
	"github.com/veilhq/veil/pkg/browser"
	"github.com/veilhq/veil/pkg/tool/builtin"
)

// RegisterBuiltin registers the full browser tool catalogue against one
// session store.
func RegisterBuiltin(r *Registry, store *browser.Store) error {
	tools := []Tool{
		&builtin.SpawnBrowserTool{Store: store},
		&builtin.ListInstancesTool{Store: store},
		&builtin.CloseInstanceTool{Store: store},
		&builtin.GetInstanceStateTool{Store: store},

		&builtin.NavigateTool{Store: store},
		&builtin.GoBackTool{Store: store},
		&builtin.GoForwardTool{Store: store},
		&builtin.ReloadPageTool{Store: store},

		&builtin.ClickElementTool{Store: store},
		&builtin.TypeTextTool{Store: store},
		&builtin.PasteTextTool{Store: store},
		&builtin.PressKeyTool{Store: store},
		&builtin.SelectOptionTool{Store: store},
		&builtin.WaitForElementTool{Store: store},
		&builtin.ScrollPageTool{Store: store},

		&builtin.GetPageContentTool{Store: store},
		&builtin.GetPageTextTool{Store: store},
		&builtin.TakeScreenshotTool{Store: store},
		&builtin.ExecuteScriptTool{Store: store},
		&builtin.QueryElementsTool{Store: store},
		&builtin.GetElementStateTool{Store: store},
		&builtin.GetPageLinksTool{Store: store},

		&builtin.GetCookiesTool{Store: store},
		&builtin.SetCookieTool{Store: store},
		&builtin.ClearCookiesTool{Store: store},
		&builtin.GetLocalStorageTool{Store: store},
		&builtin.SetLocalStorageTool{Store: store},

		&builtin.SaveProfileTool{Store: store},
		&builtin.LoadProfileTool{Store: store},
		&builtin.ListProfilesTool{Store: store},
		&builtin.DeleteProfileTool{Store: store},
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
