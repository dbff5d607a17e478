// Package remote — клиент внешнего HTTP-сервиса анализа уязвимостей.
//
// Submit отправляет артефакт, Await доводит удалённую задачу до
// финального состояния периодическим опросом с фиксированным интервалом
// и общим таймаутом. Ошибки polling никогда не поднимаются выше этой
// границы — они логируются и опрос продолжается.
package remote
