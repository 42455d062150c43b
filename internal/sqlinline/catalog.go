package sqlinline

const QCreateCatalogTable = `--sql 0c5e8f3a-7d21-4b9e-a6f4-2e1b9c8d7a05
create table if not exists jjal_metadata (
  id   serial primary key,
  url  text not null unique,
  tag  jsonb not null default '[]'::jsonb,
  text text not null default ''
);
`

const QListCatalog = `--sql 4b7d2e91-8c3f-4a6e-b1d5-9f0a3c2e6b18
select id, url, tag, text
from jjal_metadata
order by id;
`

const QSearchCatalog = `--sql a93f6c27-1e8b-4d5a-9c02-7b4e8f1d3a66
select id, url, tag, text
from jjal_metadata
where exists (
    select 1 from jsonb_array_elements_text(tag) as t(value)
    where t.value ilike $1::text
  )
  or text ilike $1::text
order by id;
`

const QInsertCatalogEntry = `--sql 6e2a9d14-3b7c-4f8e-a5d1-0c9b2e7f4a83
insert into jjal_metadata (url, tag, text)
values ($1::text, coalesce($2::jsonb, '[]'::jsonb), $3::text)
on conflict (url) do nothing
returning id;
`

const QListCatalogURLs = `--sql d17b5e3c-9a4f-4e2d-8b6c-5f1a0e3d9c42
select url
from jjal_metadata;
`
