package tsparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroListSource = `import { Component, OnInit } from '@angular/core';
import { Router } from '@angular/router';
import { Hero } from '../shared/hero.model';
import { HeroService } from '../shared/hero.service';

@Component({
  selector: 'app-hero-list',
  templateUrl: './hero-list.component.html',
})
export class HeroListComponent implements OnInit {
  heroes: Hero[] = [];
  private selectedId = 0;

  constructor(private heroService: HeroService, public router: Router) {}

  ngOnInit(): void {
    this.heroes = this.heroService.getHeroes();
  }

  get selected(): Hero | undefined {
    return this.heroes.find(h => h.id === this.selectedId);
  }
}
`

func parseSource(t *testing.T, path, source string) *Analysis {
	t.Helper()

	parser := NewParser()
	analysis, err := parser.Parse(context.Background(), path, []byte(source))
	require.NoError(t, err)
	require.NotNil(t, analysis)
	return analysis
}

func TestParseComponent(t *testing.T) {
	analysis := parseSource(t, "src/app/heroes/hero-list.component.ts", heroListSource)

	assert.False(t, analysis.HasError)
	assert.Equal(t, 1, analysis.Exports)
	require.Len(t, analysis.Classes, 1)

	cls := analysis.Classes[0]
	assert.Equal(t, "HeroListComponent", cls.Name)
	assert.True(t, cls.Exported)
	assert.False(t, cls.Abstract)
	assert.Equal(t, 10, cls.Line)

	require.Len(t, cls.Decorators, 1)
	dec := cls.Decorators[0]
	assert.Equal(t, "Component", dec.Name)
	assert.Equal(t, 6, dec.Line)
	assert.Equal(t, "app-hero-list", dec.Args["selector"])
	assert.Equal(t, "./hero-list.component.html", dec.Args["templateUrl"])

	require.NotNil(t, cls.Ctor)
	assert.Equal(t, 14, cls.Ctor.Line)
	require.Len(t, cls.Ctor.Params, 2)
	assert.Equal(t, "heroService", cls.Ctor.Params[0].Name)
	assert.Equal(t, "HeroService", cls.Ctor.Params[0].Type)
	assert.Equal(t, VisibilityPrivate, cls.Ctor.Params[0].Visibility)
	assert.Equal(t, "router", cls.Ctor.Params[1].Name)
	assert.Equal(t, "Router", cls.Ctor.Params[1].Type)
	assert.Equal(t, VisibilityPublic, cls.Ctor.Params[1].Visibility)
}

func TestParseComponentMembers(t *testing.T) {
	analysis := parseSource(t, "src/app/heroes/hero-list.component.ts", heroListSource)

	require.Len(t, analysis.Classes, 1)
	members := analysis.Classes[0].Members
	require.Len(t, members, 4)

	assert.Equal(t, "heroes", members[0].Name)
	assert.Equal(t, MemberProperty, members[0].Kind)
	assert.Equal(t, VisibilityNone, members[0].Visibility)
	assert.Equal(t, 11, members[0].Line)

	assert.Equal(t, "selectedId", members[1].Name)
	assert.Equal(t, MemberProperty, members[1].Kind)
	assert.Equal(t, VisibilityPrivate, members[1].Visibility)

	assert.Equal(t, "ngOnInit", members[2].Name)
	assert.Equal(t, MemberMethod, members[2].Kind)

	assert.Equal(t, "selected", members[3].Name)
	assert.Equal(t, MemberGetter, members[3].Kind)
	assert.Equal(t, 20, members[3].Line)
}

func TestParseAbstractClass(t *testing.T) {
	source := `import { Injectable } from '@angular/core';

@Injectable({ providedIn: 'root' })
export abstract class DataService {
  static instances = 0;
  protected readonly endpoint: string = '/api';
  private cache = new Map<string, unknown>();

  abstract fetch(id: string): Promise<unknown>;

  set baseUrl(url: string) {
    this.cache.clear();
  }
}
`

	analysis := parseSource(t, "src/app/shared/data.service.ts", source)
	require.Len(t, analysis.Classes, 1)

	cls := analysis.Classes[0]
	assert.Equal(t, "DataService", cls.Name)
	assert.True(t, cls.Abstract)
	assert.True(t, cls.Exported)
	assert.Nil(t, cls.Ctor)

	require.Len(t, cls.Decorators, 1)
	assert.Equal(t, "Injectable", cls.Decorators[0].Name)
	assert.Equal(t, "root", cls.Decorators[0].Args["providedIn"])

	require.Len(t, cls.Members, 5)
	assert.Equal(t, "instances", cls.Members[0].Name)
	assert.True(t, cls.Members[0].Static)
	assert.Equal(t, "endpoint", cls.Members[1].Name)
	assert.Equal(t, VisibilityProtected, cls.Members[1].Visibility)
	assert.True(t, cls.Members[1].Readonly)
	assert.Equal(t, "cache", cls.Members[2].Name)
	assert.Equal(t, VisibilityPrivate, cls.Members[2].Visibility)
	assert.Equal(t, "fetch", cls.Members[3].Name)
	assert.Equal(t, MemberMethod, cls.Members[3].Kind)
	assert.Equal(t, "baseUrl", cls.Members[4].Name)
	assert.Equal(t, MemberSetter, cls.Members[4].Kind)
}

func TestParseParameterDecorators(t *testing.T) {
	source := `import { Component, Inject, Optional } from '@angular/core';
import { API_URL } from './tokens';
import { Logger } from '../shared/logger.service';

@Component({ selector: 'app-config' })
export class ConfigComponent {
  constructor(
    @Inject(API_URL) private readonly apiUrl: string,
    @Optional() private logger?: Logger,
  ) {}
}
`

	analysis := parseSource(t, "src/app/config/config.component.ts", source)
	require.Len(t, analysis.Classes, 1)

	cls := analysis.Classes[0]
	require.NotNil(t, cls.Ctor)
	require.Len(t, cls.Ctor.Params, 2)

	first := cls.Ctor.Params[0]
	assert.Equal(t, "apiUrl", first.Name)
	assert.Equal(t, "string", first.Type)
	assert.Equal(t, VisibilityPrivate, first.Visibility)
	assert.True(t, first.Readonly)
	assert.False(t, first.Optional)
	assert.Equal(t, []string{"Inject"}, first.Decorators)

	second := cls.Ctor.Params[1]
	assert.Equal(t, "logger", second.Name)
	assert.Equal(t, "Logger", second.Type)
	assert.Equal(t, VisibilityPrivate, second.Visibility)
	assert.True(t, second.Optional)
	assert.Equal(t, []string{"Optional"}, second.Decorators)
}

func TestParseInjectAnnotations(t *testing.T) {
	source := `export class HeroController {
  static $inject = ['$http', '$log'];

  constructor($http, $log) {}
}

class SidebarController {
  constructor(navService) {}
}

SidebarController.$inject = ['navService'];
`

	analysis := parseSource(t, "src/app/legacy/hero.controller.ts", source)
	require.Len(t, analysis.Classes, 2)

	hero := analysis.Classes[0]
	assert.Equal(t, "HeroController", hero.Name)
	assert.True(t, hero.Exported)
	assert.True(t, hero.HasInject())
	assert.Equal(t, []string{"$http", "$log"}, hero.Inject)
	assert.Equal(t, 2, hero.InjectLine)
	assert.Empty(t, hero.Members, "$inject must not appear as a member")
	require.NotNil(t, hero.Ctor)
	require.Len(t, hero.Ctor.Params, 2)
	assert.Equal(t, "$http", hero.Ctor.Params[0].Name)
	assert.Empty(t, hero.Ctor.Params[0].Type)

	sidebar := analysis.Classes[1]
	assert.Equal(t, "SidebarController", sidebar.Name)
	assert.False(t, sidebar.Exported)
	assert.True(t, sidebar.HasInject())
	assert.Equal(t, []string{"navService"}, sidebar.Inject)
	assert.Equal(t, 11, sidebar.InjectLine)

	exported := analysis.ExportedClasses()
	require.Len(t, exported, 1)
	assert.Equal(t, "HeroController", exported[0].Name)
}

func TestParsePartialOnSyntaxError(t *testing.T) {
	source := `const oops = ;

export class FineComponent {
  constructor(private svc: HeroService) {}
}
`

	analysis := parseSource(t, "src/app/fine.component.ts", source)

	assert.True(t, analysis.HasError)
	require.Len(t, analysis.Classes, 1)
	assert.Equal(t, "FineComponent", analysis.Classes[0].Name)
	require.NotNil(t, analysis.Classes[0].Ctor)
}

func TestParseUndecoratedClass(t *testing.T) {
	source := `export class Hero {
  id: number;
  name: string;
}
`

	analysis := parseSource(t, "src/app/shared/hero.model.ts", source)
	require.Len(t, analysis.Classes, 1)

	cls := analysis.Classes[0]
	assert.Empty(t, cls.Decorators)
	assert.Nil(t, cls.Decorator("Component"))
	assert.False(t, cls.HasInject())
	require.Len(t, cls.Members, 2)
}

func TestClassDecoratorLookup(t *testing.T) {
	analysis := parseSource(t, "src/app/heroes/hero-list.component.ts", heroListSource)
	require.Len(t, analysis.Classes, 1)

	cls := analysis.Classes[0]
	require.NotNil(t, cls.Decorator("Component"))
	assert.Nil(t, cls.Decorator("Injectable"))
}
