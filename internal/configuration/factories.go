package configuration

import (
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/destination/folder"
	"github.com/temirov/gitmigrate/internal/gitrepo"
	"github.com/temirov/gitmigrate/internal/migration"
	"github.com/temirov/gitmigrate/internal/mirror"
	"github.com/temirov/gitmigrate/internal/origin"
	"github.com/temirov/gitmigrate/internal/transform"
)

// Built-in function names.
const (
	FunctionAuthoringPassThru    = "authoring.pass_thru"
	FunctionAuthoringOverwrite   = "authoring.overwrite"
	FunctionAuthoringWhitelisted = "authoring.whitelisted"
	FunctionNewAuthor            = "new_author"
	FunctionGitOrigin            = "git.origin"
	FunctionGerritOrigin         = "git.gerrit_origin"
	FunctionGitHubOrigin         = "git.github_origin"
	FunctionGitMirror            = "git.mirror"
	FunctionTransform            = "core.transform"
	FunctionMove                 = "core.move"
	FunctionReplace              = "core.replace"
	FunctionFolderDestination    = "folder.destination"
	FunctionWorkflow             = "workflow"
)

const (
	parameterDefaultConstant     = "default"
	parameterWhitelistConstant   = "whitelist"
	parameterAuthorConstant      = "author"
	parameterURLConstant         = "url"
	parameterRefConstant         = "ref"
	parameterNameConstant        = "name"
	parameterOriginConstant      = "origin"
	parameterDestinationConstant = "destination"
	parameterRefSpecsConstant    = "refspecs"
	parameterPruneConstant       = "prune"
	parameterBeforeConstant      = "before"
	parameterAfterConstant       = "after"
	parameterPathsConstant       = "paths"
	parameterPathConstant        = "path"
	parameterAuthoringConstant   = "authoring"
	parameterOriginFilesConstant = "origin_files"
	defaultMigrationNameConstant = "default"
)

// Dependencies are the runtime collaborators and process-level options handed
// to factories.
type Dependencies struct {
	RepositoryCache *gitrepo.RepositoryCache
	HookExecutor    origin.HookExecutor
	Console         console.Console
	Logger          *zap.Logger
	// OriginCheckoutHook runs in every checkout of a git origin.
	OriginCheckoutHook string
	// OriginURLOverride replaces the URL every git origin fetches from.
	OriginURLOverride string
	// ForcePush allows non-fast-forward updates in every mirror.
	ForcePush bool
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Console == nil {
		dependencies.Console = console.NewLoggerConsole(dependencies.Logger)
	}
	return dependencies
}

type authoringArguments struct {
	Whitelist []string `mapstructure:"whitelist"`
}

type authorArguments struct {
	Author string `mapstructure:"author"`
}

type originArguments struct {
	URL string `mapstructure:"url"`
	Ref string `mapstructure:"ref"`
}

type mirrorArguments struct {
	Name        string   `mapstructure:"name"`
	Origin      string   `mapstructure:"origin"`
	Destination string   `mapstructure:"destination"`
	RefSpecs    []string `mapstructure:"refspecs"`
	Prune       bool     `mapstructure:"prune"`
}

type replaceArguments struct {
	Before string   `mapstructure:"before"`
	After  string   `mapstructure:"after"`
	Paths  []string `mapstructure:"paths"`
}

type moveArguments struct {
	Before string `mapstructure:"before"`
	After  string `mapstructure:"after"`
}

type folderArguments struct {
	Path string `mapstructure:"path"`
}

type workflowArguments struct {
	Name        string   `mapstructure:"name"`
	OriginFiles []string `mapstructure:"origin_files"`
}

func builtinFactories(dependencies Dependencies) []Factory {
	authorParameter := Parameter{Name: parameterDefaultConstant, Kind: ParameterKindAuthor, Required: true}
	originParameters := []Parameter{
		{Name: parameterURLConstant, Kind: ParameterKindString, Required: true},
		{Name: parameterRefConstant, Kind: ParameterKindString, Default: ""},
	}

	return []Factory{
		{
			Name:       FunctionAuthoringPassThru,
			Parameters: []Parameter{authorParameter},
			Build:      buildAuthoring(authoring.MappingModePassThru),
		},
		{
			Name:       FunctionAuthoringOverwrite,
			Parameters: []Parameter{authorParameter},
			Build:      buildAuthoring(authoring.MappingModeUseDefault),
		},
		{
			Name: FunctionAuthoringWhitelisted,
			Parameters: []Parameter{
				authorParameter,
				{Name: parameterWhitelistConstant, Kind: ParameterKindStringList, Required: true},
			},
			Build: buildAuthoring(authoring.MappingModeWhitelist),
		},
		{
			Name:       FunctionNewAuthor,
			Parameters: []Parameter{{Name: parameterAuthorConstant, Kind: ParameterKindString, Required: true}},
			Build: func(arguments Arguments) (any, error) {
				var decoded authorArguments
				if decodeError := arguments.Decode(&decoded); decodeError != nil {
					return nil, decodeError
				}
				return authoring.ParseAuthor(decoded.Author)
			},
		},
		{Name: FunctionGitOrigin, Parameters: originParameters, Build: buildOrigin(origin.RepoTypeGit, dependencies)},
		{Name: FunctionGerritOrigin, Parameters: originParameters, Build: buildOrigin(origin.RepoTypeGerrit, dependencies)},
		{Name: FunctionGitHubOrigin, Parameters: originParameters, Build: buildOrigin(origin.RepoTypeGitHub, dependencies)},
		{
			Name: FunctionGitMirror,
			Parameters: []Parameter{
				{Name: parameterNameConstant, Kind: ParameterKindString, Default: defaultMigrationNameConstant},
				{Name: parameterOriginConstant, Kind: ParameterKindString, Required: true},
				{Name: parameterDestinationConstant, Kind: ParameterKindString, Required: true},
				{Name: parameterRefSpecsConstant, Kind: ParameterKindStringList},
				{Name: parameterPruneConstant, Kind: ParameterKindBool, Default: false},
			},
			Build: func(arguments Arguments) (any, error) {
				var decoded mirrorArguments
				if decodeError := arguments.Decode(&decoded); decodeError != nil {
					return nil, decodeError
				}
				mirrorConfiguration, configurationError := mirror.NewConfiguration(decoded.Name, decoded.Origin, decoded.Destination, decoded.RefSpecs, decoded.Prune, dependencies.ForcePush)
				if configurationError != nil {
					return nil, configurationError
				}
				return mirror.NewMirror(mirrorConfiguration, mirror.Dependencies{
					RepositoryCache: dependencies.RepositoryCache,
					Console:         dependencies.Console,
					Logger:          dependencies.Logger,
				})
			},
		},
		{
			Name: FunctionTransform,
			Parameters: []Parameter{
				{Name: transform.TransformationsArgumentName, Kind: ParameterKindTransformationList, Required: true},
				{Name: transform.ReversalArgumentName, Kind: ParameterKindTransformationList, Required: true},
			},
			Build: func(arguments Arguments) (any, error) {
				forward, _ := arguments.Value(transform.TransformationsArgumentName).([]any)
				reversal, _ := arguments.Value(transform.ReversalArgumentName).([]any)
				return transform.BuildPipeline(forward, reversal)
			},
		},
		{
			Name: FunctionMove,
			Parameters: []Parameter{
				{Name: parameterBeforeConstant, Kind: ParameterKindString, Required: true},
				{Name: parameterAfterConstant, Kind: ParameterKindString, Required: true},
			},
			Build: func(arguments Arguments) (any, error) {
				var decoded moveArguments
				if decodeError := arguments.Decode(&decoded); decodeError != nil {
					return nil, decodeError
				}
				return transform.NewMove(decoded.Before, decoded.After)
			},
		},
		{
			Name: FunctionReplace,
			Parameters: []Parameter{
				{Name: parameterBeforeConstant, Kind: ParameterKindString, Required: true},
				{Name: parameterAfterConstant, Kind: ParameterKindString, Required: true},
				{Name: parameterPathsConstant, Kind: ParameterKindStringList},
			},
			Build: func(arguments Arguments) (any, error) {
				var decoded replaceArguments
				if decodeError := arguments.Decode(&decoded); decodeError != nil {
					return nil, decodeError
				}
				return transform.NewReplace(decoded.Before, decoded.After, decoded.Paths)
			},
		},
		{
			Name:       FunctionFolderDestination,
			Parameters: []Parameter{{Name: parameterPathConstant, Kind: ParameterKindString, Required: true}},
			Build: func(arguments Arguments) (any, error) {
				var decoded folderArguments
				if decodeError := arguments.Decode(&decoded); decodeError != nil {
					return nil, decodeError
				}
				return folder.NewDestination(decoded.Path, dependencies.Logger)
			},
		},
		{
			Name: FunctionWorkflow,
			Parameters: []Parameter{
				{Name: parameterNameConstant, Kind: ParameterKindString, Default: defaultMigrationNameConstant},
				{Name: parameterOriginConstant, Kind: ParameterKindOrigin, Required: true},
				{Name: parameterAuthoringConstant, Kind: ParameterKindAuthoring, Required: true},
				{Name: parameterDestinationConstant, Kind: ParameterKindDestination, Required: true},
				{Name: transform.TransformationsArgumentName, Kind: ParameterKindTransformationList, Default: []any{}},
				{Name: transform.ReversalArgumentName, Kind: ParameterKindTransformationList},
				{Name: parameterOriginFilesConstant, Kind: ParameterKindStringList},
			},
			Build: func(arguments Arguments) (any, error) {
				var decoded workflowArguments
				if decodeError := arguments.Decode(&decoded); decodeError != nil {
					return nil, decodeError
				}
				pathFilter := origin.AllFiles()
				if len(decoded.OriginFiles) > 0 {
					filter, filterError := origin.NewPathFilter(decoded.OriginFiles)
					if filterError != nil {
						return nil, filterError
					}
					pathFilter = filter
				}
				forward := arguments.Transformations(transform.TransformationsArgumentName)
				reversal := arguments.Transformations(transform.ReversalArgumentName)
				if reversal == nil {
					if len(forward) > 0 {
						return nil, transform.NewMissingArgumentError(transform.ReversalArgumentName, FunctionWorkflow)
					}
					reversal = []transform.Transformation{}
				}
				pipeline, pipelineError := transform.NewPipeline(forward, reversal)
				if pipelineError != nil {
					return nil, pipelineError
				}
				return migration.NewWorkflow(migration.WorkflowConfiguration{
					Name:        decoded.Name,
					Origin:      arguments.Origin(parameterOriginConstant),
					PathFilter:  pathFilter,
					Authoring:   arguments.Authoring(parameterAuthoringConstant),
					Pipeline:    pipeline,
					Destination: arguments.Destination(parameterDestinationConstant),
				}, migration.WorkflowDependencies{Console: dependencies.Console, Logger: dependencies.Logger})
			},
		},
	}
}

func buildAuthoring(mode authoring.MappingMode) BuildFunction {
	return func(arguments Arguments) (any, error) {
		var decoded authoringArguments
		if decodeError := arguments.Decode(&decoded); decodeError != nil {
			return nil, decodeError
		}
		return authoring.NewAuthoring(arguments.Author(parameterDefaultConstant), mode, decoded.Whitelist)
	}
}

func buildOrigin(repoType origin.RepoType, dependencies Dependencies) BuildFunction {
	return func(arguments Arguments) (any, error) {
		var decoded originArguments
		if decodeError := arguments.Decode(&decoded); decodeError != nil {
			return nil, decodeError
		}
		return origin.NewGitOrigin(decoded.URL, decoded.Ref, repoType, origin.Options{
			CheckoutHook: dependencies.OriginCheckoutHook,
			URLOverride:  dependencies.OriginURLOverride,
		}, origin.Dependencies{
			RepositoryCache: dependencies.RepositoryCache,
			HookExecutor:    dependencies.HookExecutor,
			Console:         dependencies.Console,
			Logger:          dependencies.Logger,
		})
	}
}
